package dispatch

import (
	"context"
	"fmt"

	"github.com/bluefunda/backlogr/types"
)

func (d *Dispatcher) userHandlers() handlerSet {
	return handlerSet{
		types.ActionList: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			users, err := d.api.ListUsers(ctx)
			if err != nil {
				return types.Result{}, err
			}
			if users == nil {
				users = []types.User{}
			}
			return success(fmt.Sprintf("I found %d users:", len(users)), data{"users": users}), nil
		},

		types.ActionGet: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !present(params, "userId") {
				return failure("Please specify a user ID"), nil
			}
			userID, err := intParam(params, "userId")
			if err != nil {
				return failure(err.Error()), nil
			}
			user, err := d.api.GetUser(ctx, userID)
			if err != nil {
				return types.Result{}, err
			}
			return success(fmt.Sprintf("Here's information about user %s:", user.Name), data{"user": user}), nil
		},

		types.ActionActivities: func(ctx context.Context, params map[string]interface{}) (types.Result, error) {
			if !present(params, "userId") {
				return failure("Please specify a user ID to get activities"), nil
			}
			userID, err := intParam(params, "userId")
			if err != nil {
				return failure(err.Error()), nil
			}
			activities, err := d.api.ListUserActivities(ctx, userID)
			if err != nil {
				return types.Result{}, err
			}
			if activities == nil {
				activities = []types.Activity{}
			}
			return success(fmt.Sprintf("I found %d activities for user %d:", len(activities), userID),
				data{"activities": activities}), nil
		},
	}
}
