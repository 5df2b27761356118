package workflow

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"invisiguard/gateway"
	"invisiguard/models"
)

// FakeLink generates demo phishing links.
type FakeLink struct {
	orchestrator
}

// OnGenerate asks the service for a fake link and stores it as an absolute
// URL on the service origin. On failure the previous link stays in place.
func (w *FakeLink) OnGenerate(ctx context.Context) error {
	_, _, err := w.Generate(ctx)
	return err
}

// Generate is OnGenerate returning the link produced by this call and
// whether it was stored.
func (w *FakeLink) Generate(ctx context.Context) (models.FakeLinkResult, Outcome, error) {
	w.state.mu.Lock()
	epoch := w.state.epoch
	w.state.mu.Unlock()

	path, err := w.gw.GenerateFakeURL(ctx)
	if err != nil {
		outcome := Outcome{Request: gateway.OutcomeOf(err)}
		err = w.fail(gateway.OpGenerateFakeURL, epoch, err, func(err error) {
			w.state.urlCheck.LastError = err
		})
		return models.FakeLinkResult{}, outcome, err
	}

	link := models.FakeLinkResult{URL: absoluteURL(w.gw.BaseURL(), path)}

	w.state.mu.Lock()
	defer w.state.mu.Unlock()

	if !w.state.current(epoch) {
		w.stale(gateway.OpGenerateFakeURL)
		return link, Outcome{}, nil
	}
	stored := link
	w.state.urlCheck.FakeLink = &stored
	w.state.urlCheck.LastError = nil

	w.logger.Info("Fake link generated", zap.String("url", link.URL))
	return link, Outcome{Stored: true}, nil
}

func absoluteURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
