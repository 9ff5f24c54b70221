package app

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const msgDeleteFailed = "Error deleting file."

var errNoWebEndpoint = errors.New("config.web.endpoint must be set to delete objects")

// Remover deletes objects through the web endpoint.
type Remover struct {
	web       Deleter
	presenter Presenter
}

// NewRemover creates a remover. It fails when no endpoint is configured.
func NewRemover(env *Env) (*Remover, error) {
	if env.Web == nil {
		return nil, errNoWebEndpoint
	}
	return &Remover{web: env.Web, presenter: env.Presenter}, nil
}

// Delete removes key. Success reloads the folder holding key without a
// notification; failure notifies without reloading.
func (r *Remover) Delete(ctx context.Context, key string) error {
	if err := r.web.Delete(ctx, key); err != nil {
		r.presenter.Notify(ctx, msgDeleteFailed, err)
		return err
	}

	logutil.GetLogger(ctx).Info("object deleted", zap.String("key", key))
	folder := parentPrefix(key)
	if err := r.presenter.Reload(ctx, folder); err != nil {
		return fmt.Errorf("reload %s: %w", folder, err)
	}
	return nil
}

func parentPrefix(key string) string {
	dir := path.Dir(key)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir + "/"
}
