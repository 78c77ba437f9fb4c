package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"github.com/dmitrijs2005/gophdrive/internal/client/api"
	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/pathx"
)

const (
	kindFile   = "file"
	kindFolder = "folder"
)

func (a *App) Help(ctx context.Context, args []string) error {
	fmt.Fprintln(a.out, "Browse:    pwd, (l)s [path], cd <path>, find ..., activity [limit]")
	fmt.Fprintln(a.out, "Change:    mkdir, put, puttree, rename, rm, mv, cp, url, retry")
	fmt.Fprintln(a.out, "Clipboard: select, selall, unselect, sel, copy, cut, clear, paste [dest]")
	fmt.Fprintln(a.out, "Other:     token, exit")
	return nil
}

func (a *App) Pwd(ctx context.Context, args []string) error {
	fmt.Fprintln(a.out, "/"+a.cwd)
	return nil
}

func (a *App) List(ctx context.Context, args []string) error {
	path := a.cwd
	if len(args) > 0 {
		var err error
		if path, err = resolvePath(a.cwd, args[0]); err != nil {
			return err
		}
	}

	l, err := a.api.ListFolder(ctx, path)
	if err != nil {
		return err
	}

	for _, f := range l.Folders {
		fmt.Fprintf(a.out, "%s/\n", f.Name)
	}
	for _, f := range l.Files {
		fmt.Fprintf(a.out, "%-32s %10s  %s\n", f.Name, humanize.Bytes(uint64(f.Size)), f.MimeType)
	}
	if len(l.Folders)+len(l.Files) == 0 {
		fmt.Fprintln(a.out, "(empty)")
	}
	return nil
}

func (a *App) Cd(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	path, err := resolvePath(a.cwd, args[0])
	if err != nil {
		return err
	}
	if path != "" {
		if _, err := a.api.ListFolder(ctx, path); err != nil {
			return err
		}
	}
	a.cwd = path
	return nil
}

func (a *App) Mkdir(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	path, err := resolvePath(a.cwd, args[0])
	if err != nil {
		return err
	}
	parent, name, err := splitPath(path)
	if err != nil {
		return err
	}

	f, err := a.api.CreateFolder(ctx, parent, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "created /%s\n", f.FullPath)
	return nil
}

// Put uploads a local file into the current folder. With -d the bytes go
// straight to the object store through a presigned URL.
func (a *App) Put(ctx context.Context, args []string) error {
	direct := len(args) > 0 && args[0] == "-d"
	if direct {
		args = args[1:]
	}
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	local := args[0]
	name := filepath.Base(local)
	if len(args) == 2 {
		name = args[1]
	}

	mt, err := mimetype.DetectFile(local)
	if err != nil {
		return err
	}
	f, err := os.Open(local)
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}

	var up *api.Upload
	if direct {
		up, err = a.api.UploadDirect(ctx, a.cwd, name, mt.String(), f, st.Size())
	} else {
		up, err = a.api.Upload(ctx, a.cwd, name, mt.String(), f, st.Size())
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "uploaded %s (%s)\n", up.File.Name, humanize.Bytes(uint64(up.File.Size)))
	return nil
}

// PutTree uploads a local directory, keeping its name and layout under the
// current folder.
func (a *App) PutTree(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	root := filepath.Clean(args[0])
	base := filepath.Base(root)

	var files []api.TreeFile
	var opened []*os.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		mt, err := mimetype.DetectFile(path)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		opened = append(opened, f)
		files = append(files, api.TreeFile{
			RelativePath: base + "/" + filepath.ToSlash(rel),
			MimeType:     mt.String(),
			Body:         f,
		})
		return nil
	})
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(a.out, "nothing to upload")
		return nil
	}

	res, err := a.api.UploadTree(ctx, a.cwd, files)
	if err != nil {
		return err
	}
	a.printBatch(res)
	return nil
}

func (a *App) Rename(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	it, err := a.findItem(ctx, args[0])
	if err != nil {
		return err
	}

	if it.Kind == kindFolder {
		f, pc, err := a.api.RenameFolder(ctx, it.ID, args[1])
		if err != nil {
			return err
		}
		if pc != nil {
			a.notePartial(pc)
			return nil
		}
		fmt.Fprintf(a.out, "renamed to /%s\n", f.FullPath)
		return nil
	}

	f, err := a.api.RenameFile(ctx, it.ID, args[1], false)
	if errors.Is(err, common.ErrExtensionChanged) {
		ok, cerr := Confirm(a.reader, "This changes the file extension. Continue?", a.out)
		if cerr != nil {
			return cerr
		}
		if !ok {
			fmt.Fprintln(a.out, "rename cancelled")
			return nil
		}
		f, err = a.api.RenameFile(ctx, it.ID, args[1], true)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "renamed to %s\n", f.Name)
	return nil
}

func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	items, err := a.findItems(ctx, args)
	if err != nil {
		return err
	}
	res, err := a.api.BulkDelete(ctx, items)
	if err != nil {
		return err
	}
	a.printBatch(res)
	return nil
}

func (a *App) Move(ctx context.Context, args []string) error {
	return a.transfer(ctx, args, a.api.Move)
}

func (a *App) Copy(ctx context.Context, args []string) error {
	return a.transfer(ctx, args, a.api.Copy)
}

func (a *App) transfer(ctx context.Context, args []string, op func(context.Context, []api.Item, string) (*api.BatchResult, error)) error {
	if len(args) < 2 {
		return errUsage
	}
	dest, err := resolvePath(a.cwd, args[0])
	if err != nil {
		return err
	}
	items, err := a.findItems(ctx, args[1:])
	if err != nil {
		return err
	}
	res, err := op(ctx, items, dest)
	if err != nil {
		return err
	}
	a.printBatch(res)
	return nil
}

func (a *App) URL(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	it, err := a.findItem(ctx, args[0])
	if err != nil {
		return err
	}
	if it.Kind != kindFile {
		return fmt.Errorf("%s is a folder", it.Name)
	}
	u, err := a.api.DownloadURL(ctx, it.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, u)
	return nil
}

// parseFind turns "key=value" words into filter fields; all other words
// form the search term.
func parseFind(args []string) (api.SearchQuery, error) {
	var q api.SearchQuery
	var terms []string
	for _, arg := range args {
		key, val, ok := strings.Cut(arg, "=")
		if !ok {
			terms = append(terms, arg)
			continue
		}
		switch key {
		case "mime":
			q.MimeType = val
		case "by":
			q.UploaderID = val
		case "from":
			q.From = val
		case "to":
			q.To = val
		case "min", "max":
			n, err := humanize.ParseBytes(val)
			if err != nil {
				return q, fmt.Errorf("%s: %w", key, err)
			}
			if key == "min" {
				q.MinSize = int64(n)
			} else {
				q.MaxSize = int64(n)
			}
		default:
			return q, errUsage
		}
	}
	q.Term = strings.Join(terms, " ")
	return q, nil
}

func (a *App) Find(ctx context.Context, args []string) error {
	q, err := parseFind(args)
	if err != nil {
		return err
	}
	files, err := a.api.Search(ctx, q)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintf(a.out, "/%-40s %10s  %s\n", pathx.FullPath(f.Folder, f.Name), humanize.Bytes(uint64(f.Size)), f.MimeType)
	}
	fmt.Fprintf(a.out, "%d file(s)\n", len(files))
	return nil
}

func (a *App) Activity(ctx context.Context, args []string) error {
	limit := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return errUsage
		}
		limit = n
	}
	entries, err := a.api.RecentActivity(ctx, limit)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(a.out, "%-16s %-12s %-14s %s %s\n",
			humanize.Time(e.CreatedAt), e.PrincipalName, e.Action, e.TargetKind, e.TargetName)
	}
	return nil
}

func (a *App) Retry(ctx context.Context, args []string) error {
	if a.lastCascade == nil {
		fmt.Fprintln(a.out, "nothing to retry")
		return nil
	}
	n, again, err := a.api.RetryCascade(ctx, a.lastCascade)
	if err != nil {
		return err
	}
	if again != nil {
		a.notePartial(again)
		return nil
	}
	a.lastCascade = nil
	fmt.Fprintf(a.out, "rebased %d record(s)\n", n)
	return nil
}

func (a *App) Token(ctx context.Context, args []string) error {
	tok, err := GetSecret("Access token", a.out)
	if err != nil {
		return err
	}
	if tok == "" {
		return errors.New("empty token")
	}
	a.config.Token = tok
	a.api.SetToken(tok)
	return nil
}

func (a *App) notePartial(pc *api.PartialCascade) {
	a.lastCascade = pc
	fmt.Fprintf(a.out, "/%s renamed to /%s but %d record(s) still point at the old path; run 'retry'\n",
		pc.OldPath, pc.NewPath, len(pc.Failed))
}

func (a *App) printBatch(res *api.BatchResult) {
	for _, r := range res.Items {
		switch {
		case r.Outcome == "PartialCascadeFailure":
			fmt.Fprintf(a.out, "  %s: %s (%d rebased, %d not)\n", r.Name, r.Outcome, r.Rebased, r.NotRebased)
		case r.Error != "":
			fmt.Fprintf(a.out, "  %s: %s (%s)\n", r.Name, r.Outcome, r.Error)
		}
	}
	fmt.Fprintf(a.out, "%d succeeded, %d failed\n", res.Succeeded, res.Failed)
}

// findItem resolves a name or path to a file or folder. A trailing
// separator restricts the match to folders; otherwise files win over
// folders of the same name.
func (a *App) findItem(ctx context.Context, arg string) (api.Item, error) {
	full, err := resolvePath(a.cwd, arg)
	if err != nil {
		return api.Item{}, err
	}
	parent, name, err := splitPath(full)
	if err != nil {
		return api.Item{}, err
	}
	if name == "" {
		return api.Item{}, fmt.Errorf("%w: the root is not an item", common.ErrInvalidPath)
	}

	l, err := a.api.ListFolder(ctx, parent)
	if err != nil {
		return api.Item{}, err
	}
	if !strings.HasSuffix(arg, "/") {
		for _, f := range l.Files {
			if f.Name == name {
				return api.Item{Kind: kindFile, ID: f.ID, Name: f.Name}, nil
			}
		}
	}
	for _, f := range l.Folders {
		if f.Name == name {
			return api.Item{Kind: kindFolder, ID: f.ID, Name: f.Name}, nil
		}
	}
	return api.Item{}, fmt.Errorf("%s: %w", arg, common.ErrNotFound)
}

func (a *App) findItems(ctx context.Context, args []string) ([]api.Item, error) {
	items := make([]api.Item, 0, len(args))
	for _, arg := range args {
		it, err := a.findItem(ctx, arg)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}
