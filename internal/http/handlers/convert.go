package handlers

import (
	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/geo"
)

func (req createCourierRequest) toModel() *domain.Courier {
	return &domain.Courier{
		Name:   req.Name,
		Status: req.Status,
	}
}

func (req updateCourierRequest) toModel(id int64) domain.PartialCourierUpdate {
	return domain.PartialCourierUpdate{
		ID:     id,
		Name:   req.Name,
		Status: req.Status,
	}
}

func (req replaceCourierRequest) toModel(id int64) (domain.PartialCourierUpdate, error) {
	switch {
	case req.Name == nil:
		return domain.PartialCourierUpdate{}, apperr.Invalid("name", "is required")
	case req.Status == nil:
		return domain.PartialCourierUpdate{}, apperr.Invalid("status", "is required")
	}
	return domain.PartialCourierUpdate{ID: id, Name: req.Name, Status: req.Status}, nil
}

// toModel rejects a destination with only one coordinate.
func (req createOrderRequest) toModel() (domain.NewOrder, error) {
	in := domain.NewOrder{
		ExternalID: req.ExternalID,
		Address:    req.Address,
		Recipient: domain.Recipient{
			Name:    req.RecipientName,
			Phone:   req.RecipientPhone,
			Comment: req.Comment,
		},
		Price: req.Price,
	}
	switch {
	case req.Latitude != nil && req.Longitude != nil:
		in.Destination = &geo.Point{Lat: *req.Latitude, Lon: *req.Longitude}
	case req.Latitude == nil && req.Longitude != nil:
		return domain.NewOrder{}, apperr.Invalid("latitude", "is required with longitude")
	case req.Latitude != nil && req.Longitude == nil:
		return domain.NewOrder{}, apperr.Invalid("longitude", "is required with latitude")
	}
	return in, nil
}

func courierToResponse(c domain.Courier) courierDTO {
	out := courierDTO{
		ID:              c.ID,
		Name:            c.Name,
		Status:          c.Status,
		CurrentOrderID:  c.CurrentOrderID,
		CompletedOrders: c.CompletedOrders,
		LastActive:      c.LastActive,
	}
	if c.Position != nil {
		lat, lon := c.Position.Lat, c.Position.Lon
		out.Latitude, out.Longitude = &lat, &lon
	}
	return out
}

func couriersToResponse(list []domain.Courier) []courierDTO {
	out := make([]courierDTO, 0, len(list))
	for _, c := range list {
		out = append(out, courierToResponse(c))
	}
	return out
}

func orderToResponse(o domain.Order) orderDTO {
	out := orderDTO{
		ID:             o.ID,
		ExternalID:     o.ExternalID,
		Address:        o.Address,
		Status:         o.Status,
		CourierID:      o.CourierID,
		RecipientName:  o.Recipient.Name,
		RecipientPhone: o.Recipient.Phone,
		Comment:        o.Recipient.Comment,
		Price:          o.Price,
		CreatedAt:      o.CreatedAt,
		AssignedAt:     o.AssignedAt,
		DeliveredAt:    o.DeliveredAt,
	}
	if o.Destination != nil {
		lat, lon := o.Destination.Lat, o.Destination.Lon
		out.Latitude, out.Longitude = &lat, &lon
	}
	return out
}

func ordersToResponse(list []domain.Order) []orderDTO {
	out := make([]orderDTO, 0, len(list))
	for _, o := range list {
		out = append(out, orderToResponse(o))
	}
	return out
}

func assignResultToResponse(r domain.AssignResult) assignResponse {
	return assignResponse{OrderID: r.OrderID, CourierID: r.CourierID, AssignedAt: r.AssignedAt}
}

func completeResultToResponse(r domain.CompleteResult) completeResponse {
	return completeResponse{
		OrderID:         r.OrderID,
		CourierID:       r.CourierID,
		DeliveredAt:     r.DeliveredAt,
		CompletedOrders: r.CompletedOrders,
	}
}

func positionToResponse(p domain.Position) positionDTO {
	return positionDTO{CourierID: p.CourierID, Latitude: p.Lat, Longitude: p.Lon, CapturedAt: p.CapturedAt}
}
