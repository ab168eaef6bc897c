package tasks

import (
	"context"

	tasksapi "google.golang.org/api/tasks/v1"

	"github.com/teemow/workspace-tasks/internal/instrumentation"
)

// GoogleAPI implements API on top of the generated Google Tasks client.
type GoogleAPI struct {
	svc *tasksapi.Service
}

// NewGoogleAPI wraps an already authenticated Tasks service.
func NewGoogleAPI(svc *tasksapi.Service) *GoogleAPI {
	return &GoogleAPI{svc: svc}
}

// ListTaskLists calls tasklists.list.
func (g *GoogleAPI) ListTaskLists(ctx context.Context, req ListTaskListsRequest) (*tasksapi.TaskLists, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceTasks, "tasklists.list")
	defer span.End()

	call := g.svc.Tasklists.List().Context(ctx)
	if req.MaxResults != nil {
		call = call.MaxResults(*req.MaxResults)
	}
	if req.PageToken != nil {
		call = call.PageToken(*req.PageToken)
	}

	resp, err := call.Do()
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}
	instrumentation.SetSpanSuccess(span)
	return resp, nil
}

// ListTasks calls tasks.list.
func (g *GoogleAPI) ListTasks(ctx context.Context, req ListTasksRequest) (*tasksapi.Tasks, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceTasks, "tasks.list",
		instrumentation.NewSpanAttributeBuilder().WithResource("tasklist", req.Tasklist).Build()...)
	defer span.End()

	call := g.svc.Tasks.List(req.Tasklist).Context(ctx)
	if req.ShowCompleted != nil {
		call = call.ShowCompleted(*req.ShowCompleted)
	}
	if req.ShowDeleted != nil {
		call = call.ShowDeleted(*req.ShowDeleted)
	}
	if req.ShowHidden != nil {
		call = call.ShowHidden(*req.ShowHidden)
	}
	if req.ShowAssigned != nil {
		call = call.ShowAssigned(*req.ShowAssigned)
	}
	if req.MaxResults != nil {
		call = call.MaxResults(*req.MaxResults)
	}
	if req.PageToken != nil {
		call = call.PageToken(*req.PageToken)
	}
	if req.DueMin != nil {
		call = call.DueMin(*req.DueMin)
	}
	if req.DueMax != nil {
		call = call.DueMax(*req.DueMax)
	}

	resp, err := call.Do()
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}
	instrumentation.SetSpanSuccess(span)
	return resp, nil
}

// InsertTask calls tasks.insert.
func (g *GoogleAPI) InsertTask(ctx context.Context, req InsertTaskRequest) (*tasksapi.Task, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceTasks, "tasks.insert",
		instrumentation.NewSpanAttributeBuilder().WithResource("tasklist", req.Tasklist).Build()...)
	defer span.End()

	created, err := g.svc.Tasks.Insert(req.Tasklist, req.RequestBody.toAPI()).Context(ctx).Do()
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}
	instrumentation.SetSpanSuccess(span)
	return created, nil
}

// PatchTask calls tasks.patch.
func (g *GoogleAPI) PatchTask(ctx context.Context, req PatchTaskRequest) (*tasksapi.Task, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceTasks, "tasks.patch",
		instrumentation.NewSpanAttributeBuilder().WithResource("task", req.Task).Build()...)
	defer span.End()

	updated, err := g.svc.Tasks.Patch(req.Tasklist, req.Task, req.RequestBody.toAPI()).Context(ctx).Do()
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}
	instrumentation.SetSpanSuccess(span)
	return updated, nil
}

// DeleteTask calls tasks.delete.
func (g *GoogleAPI) DeleteTask(ctx context.Context, req DeleteTaskRequest) error {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceTasks, "tasks.delete",
		instrumentation.NewSpanAttributeBuilder().WithResource("task", req.Task).Build()...)
	defer span.End()

	if err := g.svc.Tasks.Delete(req.Tasklist, req.Task).Context(ctx).Do(); err != nil {
		instrumentation.SetSpanError(span, err)
		return err
	}
	instrumentation.SetSpanSuccess(span)
	return nil
}

// toAPI converts the body to the generated type. Provided empty strings are
// force-sent so a patch can clear a field.
func (b TaskBody) toAPI() *tasksapi.Task {
	t := &tasksapi.Task{}
	if b.Title != nil {
		t.Title = *b.Title
		if t.Title == "" {
			t.ForceSendFields = append(t.ForceSendFields, "Title")
		}
	}
	if b.Notes != nil {
		t.Notes = *b.Notes
		if t.Notes == "" {
			t.ForceSendFields = append(t.ForceSendFields, "Notes")
		}
	}
	if b.Due != nil {
		t.Due = *b.Due
		if t.Due == "" {
			t.ForceSendFields = append(t.ForceSendFields, "Due")
		}
	}
	if b.Status != nil {
		t.Status = *b.Status
		if t.Status == "" {
			t.ForceSendFields = append(t.ForceSendFields, "Status")
		}
	}
	return t
}
