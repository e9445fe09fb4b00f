package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/linkrot/internal/audit"
	"github.com/JakeFAU/linkrot/internal/config"
)

type fakeRunner struct {
	runErr error
	ran    bool
	closed bool
}

func (f *fakeRunner) Run(context.Context) (audit.Summary, error) {
	f.ran = true
	return audit.Summary{}, f.runErr
}

func (f *fakeRunner) Close(context.Context) error {
	f.closed = true
	return nil
}

func withFactory(t *testing.T, runner *fakeRunner, factoryErr error, gotCfg *config.Config) {
	t.Helper()
	orig := newRunner
	newRunner = func(_ context.Context, cfg config.Config, _, _ io.Writer) (Runner, error) {
		if gotCfg != nil {
			*gotCfg = cfg
		}
		if factoryErr != nil {
			return nil, factoryErr
		}
		return runner, nil
	}
	t.Cleanup(func() { newRunner = orig })
}

func TestRootCmdPassesTokenFlag(t *testing.T) {
	runner := &fakeRunner{}
	var cfg config.Config
	withFactory(t, runner, nil, &cfg)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"-t", "alice:SECRET"})
	cmd.SetOut(&bytes.Buffer{})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	require.Equal(t, "alice:SECRET", cfg.Store.Token)
	require.True(t, runner.ran)
	require.True(t, runner.closed)
}

func TestRootCmdRequiresToken(t *testing.T) {
	t.Setenv("LINKROT_STORE_TOKEN", "")
	withFactory(t, &fakeRunner{}, nil, nil)

	cmd := newRootCmd()
	cmd.SetArgs(nil)
	err := cmd.ExecuteContext(context.Background())
	require.ErrorContains(t, err, "store.token")
}

func TestRootCmdSurfacesInitFailure(t *testing.T) {
	boom := errors.New("authentication failed")
	withFactory(t, nil, boom, nil)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--token", "alice:SECRET"})
	err := cmd.ExecuteContext(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestRootCmdClosesAfterRunFailure(t *testing.T) {
	runner := &fakeRunner{runErr: errors.New("list bookmarks: boom")}
	withFactory(t, runner, nil, nil)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--token", "alice:SECRET"})
	require.ErrorContains(t, cmd.ExecuteContext(context.Background()), "list bookmarks")
	require.True(t, runner.closed)
}

func TestRootCmdRejectsArgs(t *testing.T) {
	withFactory(t, &fakeRunner{}, nil, nil)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--token", "alice:SECRET", "extra"})
	require.Error(t, cmd.ExecuteContext(context.Background()))
}
