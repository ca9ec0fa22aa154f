package dispatch

import (
	"context"
	"fmt"

	"github.com/bluefunda/backlogr/types"
)

func (d *Dispatcher) spaceHandlers() handlerSet {
	return handlerSet{
		types.ActionGet: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			space, err := d.api.GetSpace(ctx)
			if err != nil {
				return types.Result{}, err
			}
			return success("Here's information about your Backlog space:", data{"space": space}), nil
		},

		// activities passes the intent params through as query filters
		types.ActionActivities: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			activities, err := d.api.ListSpaceActivities(ctx, without(params))
			if err != nil {
				return types.Result{}, err
			}
			if activities == nil {
				activities = []types.Activity{}
			}
			return success(fmt.Sprintf("I found %d activities in your Backlog space:", len(activities)),
				data{"activities": activities}), nil
		},

		types.ActionNotification: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			notification, err := d.api.GetSpaceNotification(ctx)
			if err != nil {
				return types.Result{}, err
			}
			return success("Here's the current space notification:", data{"notification": notification}), nil
		},

		types.ActionUpdateNotification: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !present(params, "content") {
				return failure("Please provide content for the notification"), nil
			}
			notification, err := d.api.UpdateSpaceNotification(ctx, stringParam(params, "content"))
			if err != nil {
				return types.Result{}, err
			}
			return success("Successfully updated space notification", data{"notification": notification}), nil
		},
	}
}
