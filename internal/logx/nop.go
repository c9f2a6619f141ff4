package logx

// Nop returns a Logger that discards everything.
func Nop() Logger { return discard{} }

type discard struct{}

func (discard) Debug(string, ...Field) {}
func (discard) Info(string, ...Field)  {}
func (discard) Warn(string, ...Field)  {}
func (discard) Error(string, ...Field) {}
func (discard) With(...Field) Logger   { return discard{} }
func (discard) Sync() error            { return nil }
