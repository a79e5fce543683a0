package service

import "context"

func (w *OutboxWorker) ProcessEvents(ctx context.Context) {
	w.processEvents(ctx)
}
