package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/client/api"
	"github.com/dmitrijs2005/gophdrive/internal/client/config"
	"github.com/dmitrijs2005/gophdrive/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// driveAPI is the part of *api.Client the shell uses.
type driveAPI interface {
	Ping(ctx context.Context) error
	SetToken(token string)
	ListFolder(ctx context.Context, path string) (*api.Listing, error)
	CreateFolder(ctx context.Context, parentPath, name string) (*api.Folder, error)
	RenameFolder(ctx context.Context, id, name string) (*api.Folder, *api.PartialCascade, error)
	RetryCascade(ctx context.Context, pc *api.PartialCascade) (int, *api.PartialCascade, error)
	Upload(ctx context.Context, folder, name, mimeType string, body io.Reader, size int64) (*api.Upload, error)
	UploadDirect(ctx context.Context, folder, name, mimeType string, body io.Reader, size int64) (*api.Upload, error)
	UploadTree(ctx context.Context, folder string, files []api.TreeFile) (*api.BatchResult, error)
	RenameFile(ctx context.Context, id, name string, confirmExtension bool) (*api.File, error)
	DownloadURL(ctx context.Context, id string) (string, error)
	Search(ctx context.Context, q api.SearchQuery) ([]api.File, error)
	RecentActivity(ctx context.Context, limit int) ([]api.Activity, error)
	Move(ctx context.Context, items []api.Item, destination string) (*api.BatchResult, error)
	Copy(ctx context.Context, items []api.Item, destination string) (*api.BatchResult, error)
	BulkDelete(ctx context.Context, items []api.Item) (*api.BatchResult, error)
	Session(ctx context.Context) (*api.SessionState, error)
	ToggleSelect(ctx context.Context, it api.Item) (bool, error)
	SelectAll(ctx context.Context, items []api.Item) (*api.SessionState, error)
	ClearSelection(ctx context.Context) (*api.SessionState, error)
	CopyToClipboard(ctx context.Context) (*api.SessionState, error)
	CutToClipboard(ctx context.Context) (*api.SessionState, error)
	ClearClipboard(ctx context.Context) (*api.SessionState, error)
	Paste(ctx context.Context, destination string) (*api.BatchResult, error)
}

type App struct {
	config *config.Config
	api    driveAPI
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer

	// cwd is the current folder path; "" is the root.
	cwd         string
	lastCascade *api.PartialCascade

	modeMu sync.Mutex
	mode   Mode
}

func NewApp(c *config.Config) (*App, error) {
	logger, err := logging.New(logging.FormatTint, "info", os.Stderr)
	if err != nil {
		return nil, err
	}

	return &App{
		config: c,
		api:    api.New(c.ServerURL, c.Token, c.RequestTimeout),
		logger: logger,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) Mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.logger.Info(ctx, "switched mode", "mode", mode)
	}
}

// Run asks for a token when none is configured, then serves the REPL
// until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Drive shell (type 'help' for commands)")

	if a.config.Token == "" {
		if err := a.Token(ctx, nil); err != nil {
			a.logger.Error(ctx, "reading token", "error", err)
			return
		}
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) getStatus() string {
	return fmt.Sprintf("/%s (%s)", a.cwd, a.Mode())
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.api.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ctx, ModeOffline)
			} else {
				a.setMode(ctx, ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
