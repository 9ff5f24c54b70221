package app

import (
	"context"
	"errors"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// DeleteCommand removes objects through the web endpoint.
type DeleteCommand struct {
	keys    []string
	remover *Remover
}

// NewDeleteCommand builds the delete command.
func NewDeleteCommand() *DeleteCommand {
	return &DeleteCommand{}
}

func (c *DeleteCommand) Name() string { return "delete" }

func (c *DeleteCommand) Desc() string {
	return "Delete objects through the CSRF protected web endpoint"
}

func (c *DeleteCommand) Init(f *pflag.FlagSet) {
	f.StringSliceVar(&c.keys, "key", nil, "Object key to delete (repeatable)")
}

func (c *DeleteCommand) PreRun(ctx context.Context, env *Env) error {
	if len(c.keys) == 0 {
		return errors.New("delete requires at least one --key")
	}
	remover, err := NewRemover(env)
	if err != nil {
		return err
	}
	c.remover = remover
	return nil
}

func (c *DeleteCommand) Run(ctx context.Context) error {
	for _, key := range c.keys {
		if err := c.remover.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (c *DeleteCommand) PostRun(ctx context.Context) error {
	logutil.GetLogger(ctx).Info("delete finished", zap.Int("keys", len(c.keys)))
	return nil
}

func init() {
	RegisterRunner("delete", func() IRunner { return NewDeleteCommand() })
}
