package app

import (
	"context"
	"fmt"
	"io"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Presenter surfaces outcomes to the user.
type Presenter interface {
	// Notify shows a message. err is logged, never shown verbatim.
	Notify(ctx context.Context, msg string, err error)
	// Reload refreshes the view of the folder at prefix.
	Reload(ctx context.Context, prefix string) error
}

type consolePresenter struct {
	out    io.Writer
	reload func(ctx context.Context, prefix string) error
}

// NewConsolePresenter prints notifications to out and delegates reloads.
func NewConsolePresenter(out io.Writer, reload func(ctx context.Context, prefix string) error) Presenter {
	return &consolePresenter{out: out, reload: reload}
}

func (p *consolePresenter) Notify(ctx context.Context, msg string, err error) {
	if err != nil {
		logutil.GetLogger(ctx).Error("operation failed", zap.String("notice", msg), zap.Error(err))
	}
	fmt.Fprintln(p.out, msg)
}

func (p *consolePresenter) Reload(ctx context.Context, prefix string) error {
	if p.reload == nil {
		return nil
	}
	return p.reload(ctx, prefix)
}
