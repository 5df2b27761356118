package workflow

import (
	"context"

	"go.uber.org/zap"

	"invisiguard/gateway"
	"invisiguard/models"
)

// URLCheck sequences phishing checks. There is no in-flight guard: two
// overlapping checks both land, and whichever response arrives last wins.
type URLCheck struct {
	orchestrator
}

// SetURL stores the text to check.
func (w *URLCheck) SetURL(url string) {
	w.state.mu.Lock()
	defer w.state.mu.Unlock()
	w.state.urlCheck.URL = url
}

// OnCheck sends the current URL text, empty or not, to the classifier. On
// failure the previous result stays in place.
func (w *URLCheck) OnCheck(ctx context.Context) error {
	_, _, err := w.Check(ctx)
	return err
}

// Check is OnCheck for callers that need to know what happened. The
// returned result is the verdict for this call and is only meaningful when
// the outcome is Stored.
func (w *URLCheck) Check(ctx context.Context) (models.URLCheckResult, Outcome, error) {
	w.state.mu.Lock()
	url := w.state.urlCheck.URL
	epoch := w.state.epoch
	w.state.mu.Unlock()

	result, err := w.gw.CheckURL(ctx, url)
	if err != nil {
		outcome := Outcome{Request: gateway.OutcomeOf(err)}
		err = w.fail(gateway.OpCheckURL, epoch, err, func(err error) {
			w.state.urlCheck.LastError = err
		})
		return models.URLCheckResult{}, outcome, err
	}

	w.state.mu.Lock()
	defer w.state.mu.Unlock()

	if !w.state.current(epoch) {
		w.stale(gateway.OpCheckURL)
		return result, Outcome{}, nil
	}
	stored := result
	w.state.urlCheck.Result = &stored
	w.state.urlCheck.LastError = nil

	w.logger.Info("URL checked",
		zap.String("url", url),
		zap.String("status", result.Status),
		zap.String("phishing_type", result.PhishingType))
	return result, Outcome{Stored: true}, nil
}
