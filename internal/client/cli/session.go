package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophdrive/internal/client/api"
)

func (a *App) Select(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	items, err := a.findItems(ctx, args)
	if err != nil {
		return err
	}
	for _, it := range items {
		on, err := a.api.ToggleSelect(ctx, it)
		if err != nil {
			return err
		}
		if on {
			fmt.Fprintf(a.out, "selected %s\n", it.Name)
		} else {
			fmt.Fprintf(a.out, "unselected %s\n", it.Name)
		}
	}
	return nil
}

// SelectAll replaces the selection with everything in the current folder.
func (a *App) SelectAll(ctx context.Context, args []string) error {
	l, err := a.api.ListFolder(ctx, a.cwd)
	if err != nil {
		return err
	}
	items := make([]api.Item, 0, len(l.Folders)+len(l.Files))
	for _, f := range l.Folders {
		items = append(items, api.Item{Kind: kindFolder, ID: f.ID, Name: f.Name})
	}
	for _, f := range l.Files {
		items = append(items, api.Item{Kind: kindFile, ID: f.ID, Name: f.Name})
	}

	st, err := a.api.SelectAll(ctx, items)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d item(s) selected\n", len(st.Selected))
	return nil
}

func (a *App) Unselect(ctx context.Context, args []string) error {
	_, err := a.api.ClearSelection(ctx)
	return err
}

func (a *App) ShowSession(ctx context.Context, args []string) error {
	st, err := a.api.Session(ctx)
	if err != nil {
		return err
	}
	a.printSession(st)
	return nil
}

func (a *App) CopySelection(ctx context.Context, args []string) error {
	return a.hold(a.api.CopyToClipboard(ctx))
}

func (a *App) CutSelection(ctx context.Context, args []string) error {
	return a.hold(a.api.CutToClipboard(ctx))
}

func (a *App) hold(st *api.SessionState, err error) error {
	if err != nil {
		return err
	}
	if len(st.Clipboard) == 0 {
		fmt.Fprintln(a.out, "nothing selected")
		return nil
	}
	fmt.Fprintf(a.out, "%d item(s) on the clipboard (%s)\n", len(st.Clipboard), st.Mode)
	return nil
}

func (a *App) ClearClipboard(ctx context.Context, args []string) error {
	_, err := a.api.ClearClipboard(ctx)
	return err
}

// Paste drops the clipboard into the current folder, or into the folder
// given as the only argument.
func (a *App) Paste(ctx context.Context, args []string) error {
	dest := a.cwd
	if len(args) > 0 {
		var err error
		if dest, err = resolvePath(a.cwd, args[0]); err != nil {
			return err
		}
	}
	res, err := a.api.Paste(ctx, dest)
	if err != nil {
		return err
	}
	a.printBatch(res)
	return nil
}

func (a *App) printSession(st *api.SessionState) {
	fmt.Fprintf(a.out, "state: %s", st.State)
	if st.Mode != "" {
		fmt.Fprintf(a.out, " (%s)", st.Mode)
	}
	fmt.Fprintln(a.out)
	for _, it := range st.Selected {
		fmt.Fprintf(a.out, "  selected  %s %s\n", it.Kind, it.Name)
	}
	for _, it := range st.Clipboard {
		fmt.Fprintf(a.out, "  clipboard %s %s\n", it.Kind, it.Name)
	}
}
