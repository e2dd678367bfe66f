package handler

import "context"

type pingerFunc func() error

func (f pingerFunc) Ping(context.Context) error { return f() }
