package notifycenter

import (
	"context"

	"github.com/noahxzhu/timer-reminder/internal/model"
)

// Prompter answers the one-time permission prompt.
type Prompter interface {
	Prompt(ctx context.Context, opts model.AuthorizationOptions) (model.AuthorizationStatus, error)
}

// PolicyPrompter answers every prompt with a configured decision.
type PolicyPrompter struct {
	Decision model.AuthorizationStatus
}

func (p PolicyPrompter) Prompt(ctx context.Context, _ model.AuthorizationOptions) (model.AuthorizationStatus, error) {
	if err := ctx.Err(); err != nil {
		return model.StatusNotDetermined, err
	}
	if p.Decision == model.StatusNotDetermined {
		return model.StatusDenied, nil
	}
	return p.Decision, nil
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, opts model.AuthorizationOptions) (model.AuthorizationStatus, error)

func (f PrompterFunc) Prompt(ctx context.Context, opts model.AuthorizationOptions) (model.AuthorizationStatus, error) {
	return f(ctx, opts)
}
