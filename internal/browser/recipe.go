package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/oagarcia/proyecto-skandia/internal/common"
)

// StepKind identifies the browser action a recipe step performs.
type StepKind string

const (
	StepNavigate    StepKind = "navigate"     // Load Target as a URL
	StepWaitVisible StepKind = "wait-visible" // Wait until Target selector is visible
	StepClick       StepKind = "click"        // Click the Target selector
	StepSetValue    StepKind = "set-value"    // Set Target's value to Value and fire a change event
	StepPoll        StepKind = "poll"         // Wait until the Expression evaluates truthy
	StepEvaluate    StepKind = "evaluate"     // Run Expression, discarding the result
	StepSleep       StepKind = "sleep"        // Fixed wait, used only where no condition is observable
)

// Step is one action in an interaction recipe. Timeout of zero means the
// recipe's default applies; Optional steps log a warning on failure instead
// of aborting the recipe.
type Step struct {
	Kind       StepKind
	Name       string
	Target     string        // CSS selector, or URL for navigate steps
	Value      string        // Value for set-value steps
	Expression string        // JavaScript for poll and evaluate steps
	Timeout    time.Duration
	Optional   bool
}

// Recipe is an ordered list of interaction steps against a live page.
type Recipe struct {
	Name  string
	Steps []Step
}

// StepTimeoutError reports which step of which recipe timed out, so scrape
// failures name the exact page interaction that broke.
type StepTimeoutError struct {
	Recipe    string
	StepIndex int
	StepName  string
	Target    string
}

func (e *StepTimeoutError) Error() string {
	return fmt.Sprintf("recipe %s: step %d (%s) timed out waiting on %q", e.Recipe, e.StepIndex, e.StepName, e.Target)
}

// Driver runs interaction recipes against browser sessions.
type Driver struct {
	stepTimeout time.Duration
	logger      arbor.ILogger
}

// NewDriver creates a recipe driver with the given default per-step timeout.
func NewDriver(stepTimeout time.Duration, logger arbor.ILogger) *Driver {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Driver{
		stepTimeout: stepTimeout,
		logger:      logger,
	}
}

// Run executes the recipe's steps in order against ctx. Each step gets its
// own timeout; a step that exceeds it fails the recipe with a
// StepTimeoutError unless the step is marked Optional.
func (d *Driver) Run(ctx context.Context, recipe Recipe) error {
	for i, step := range recipe.Steps {
		start := time.Now()
		err := d.runStep(ctx, step)

		if err != nil {
			if step.Optional {
				d.logger.Warn().
					Str("recipe", recipe.Name).
					Str("step", step.Name).
					Err(err).
					Msg("Optional step failed, continuing")
				continue
			}
			if isTimeout(err) {
				return &StepTimeoutError{
					Recipe:    recipe.Name,
					StepIndex: i,
					StepName:  step.Name,
					Target:    step.Target,
				}
			}
			return fmt.Errorf("recipe %s: step %d (%s): %w", recipe.Name, i, step.Name, err)
		}

		d.logger.Debug().
			Str("recipe", recipe.Name).
			Str("step", step.Name).
			Str("duration", time.Since(start).String()).
			Msg("Step completed")
	}
	return nil
}

func (d *Driver) runStep(ctx context.Context, step Step) error {
	timeout := step.Timeout
	if timeout <= 0 {
		timeout = d.stepTimeout
	}

	if step.Kind == StepSleep {
		// Sleep steps use Timeout as the wait itself, bounded only by the
		// session context.
		return chromedp.Run(ctx, chromedp.Sleep(timeout))
	}

	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	switch step.Kind {
	case StepNavigate:
		return chromedp.Run(stepCtx, chromedp.Navigate(step.Target))

	case StepWaitVisible:
		return chromedp.Run(stepCtx, chromedp.WaitVisible(step.Target, chromedp.ByQuery))

	case StepClick:
		return chromedp.Run(stepCtx, chromedp.Click(step.Target, chromedp.ByQuery))

	case StepSetValue:
		// Setting .value directly and dispatching a change event matches how
		// the portal's own handlers expect input to arrive.
		var ok bool
		script := fmt.Sprintf(`(() => {
			const el = document.querySelector(%q);
			if (!el) return false;
			el.value = %q;
			el.dispatchEvent(new Event('change', { bubbles: true }));
			return true;
		})()`, step.Target, step.Value)
		if err := chromedp.Run(stepCtx, chromedp.Evaluate(script, &ok)); err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("element %q not found", step.Target)
		}
		return nil

	case StepPoll:
		var res bool
		return chromedp.Run(stepCtx, chromedp.Poll(step.Expression, &res,
			chromedp.WithPollingInterval(250*time.Millisecond)))

	case StepEvaluate:
		var discard any
		return chromedp.Run(stepCtx, chromedp.Evaluate(step.Expression, &discard))

	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, chromedp.ErrPollingTimeout)
}
