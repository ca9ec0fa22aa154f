// Package dispatch routes a structured intent to the Backlog API calls that
// fulfil it and shapes the outcome into a uniform Result.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/bluefunda/backlogr/backlog"
	"github.com/bluefunda/backlogr/types"
	"go.uber.org/zap"
)

// NotConfiguredMessage is returned for every intent while the API client has no configuration.
const NotConfiguredMessage = "⚠️ Backlog API is not configured. Set BACKLOG_API_KEY and BACKLOG_SPACE_ID, pass --api-key and --space-id, or add them to the config file."

// handlerFunc fulfils one action. A validation failure is reported as a
// failed Result with a nil error; an error means an API call went wrong.
type handlerFunc func(ctx context.Context, params map[string]interface{}) (types.Result, error)

type handlerSet map[types.Action]handlerFunc

// Dispatcher is stateless apart from the API client it was built with and is
// safe for concurrent use.
type Dispatcher struct {
	api      types.BacklogAPI
	logger   *zap.Logger
	handlers map[types.EntityType]handlerSet
}

// New builds a dispatcher around api
func New(api types.BacklogAPI, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Dispatcher{
		api:    api,
		logger: logger.With(zap.String("component", "dispatcher")),
	}

	milestones := d.milestoneHandlers()

	d.handlers = map[types.EntityType]handlerSet{
		types.EntityProjects:     d.projectHandlers(),
		types.EntityIssues:       d.issueHandlers(),
		types.EntityUsers:        d.userHandlers(),
		types.EntityWikis:        d.wikiHandlers(),
		types.EntityMilestones:   milestones,
		types.EntityVersions:     milestones,
		types.EntityCategories:   d.categoryHandlers(),
		types.EntityIssueTypes:   d.issueTypeHandlers(),
		types.EntityCustomFields: d.customFieldHandlers(),
		types.EntitySpace:        d.spaceHandlers(),
	}

	return d
}

// Supports reports whether the type/action pair has a handler
func (d *Dispatcher) Supports(entityType types.EntityType, action types.Action) bool {
	set, ok := d.handlers[entityType]
	if !ok {
		return false
	}
	_, ok = set[action]
	return ok
}

// Dispatch executes the intent. It never returns an error and never panics;
// every outcome is described by the Result.
func (d *Dispatcher) Dispatch(ctx context.Context, intent types.Intent) (result types.Result) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Command handler panicked",
				zap.String("type", string(intent.Type)),
				zap.String("action", string(intent.Action)),
				zap.Any("panic", r))
			result = failure(fmt.Sprintf("Error executing command: %v", r))
		}
	}()

	if !d.api.IsConfigured() {
		return failure(NotConfiguredMessage)
	}

	set, ok := d.handlers[intent.Type]
	if !ok {
		return failure(fmt.Sprintf("I don't know how to handle '%s' commands.", intent.Type))
	}

	handler, ok := set[intent.Action]
	if !ok {
		return failure(fmt.Sprintf("I don't know how to %s %s.", intent.Action, intent.Type))
	}

	params := intent.Params
	if params == nil {
		params = map[string]interface{}{}
	}

	d.logger.Info("Executing command",
		zap.String("type", string(intent.Type)),
		zap.String("action", string(intent.Action)))

	result, err := handler(ctx, params)
	if err != nil {
		if errors.Is(err, backlog.ErrNotConfigured) {
			return failure(NotConfiguredMessage)
		}
		d.logger.Warn("Command failed",
			zap.String("type", string(intent.Type)),
			zap.String("action", string(intent.Action)),
			zap.Error(err))
		return failure("Error executing command: " + err.Error())
	}

	return result
}

func success(message string, data interface{}) types.Result {
	return types.Result{Success: true, Message: message, Data: data}
}

func failure(message string) types.Result {
	return types.Result{Success: false, Message: message}
}

// data is the shape of every Result payload
type data map[string]interface{}
