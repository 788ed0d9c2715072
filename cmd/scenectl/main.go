// Command scenectl inspects saved scenes: the sqlite history and single zstd scene files.
//
//	scenectl -db saves/history.db list [-n 20]
//	scenectl -db saves/history.db show <id>
//	scenectl -db saves/history.db export <id> <out.json.zst>
//	scenectl -db saves/history.db prune -keep 50
//	scenectl -file saves/scene.json.zst show
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"hinge-builder/internal/scenestate"
)

var errUsage = errors.New("usage: scenectl (-db path | -file path) list|show|export|prune [args]")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("scenectl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dbPath := fs.String("db", "", "sqlite scene history")
	filePath := fs.String("file", "", "single zstd scene file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return errUsage
	}

	if *filePath != "" {
		if rest[0] != "show" {
			return fmt.Errorf("%w: -file supports show only", errUsage)
		}
		st, err := scenestate.NewFileStore(*filePath).Load(ctx)
		if err != nil {
			return fmt.Errorf("load %s: %w", *filePath, err)
		}
		return printScene(out, st)
	}
	if *dbPath == "" {
		return fmt.Errorf("%w: missing -db or -file", errUsage)
	}

	db, err := scenestate.OpenSQLite(*dbPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", *dbPath, err)
	}
	defer db.Close()

	switch rest[0] {
	case "list":
		return list(ctx, db, rest[1:], out)
	case "show":
		id, err := parseID(rest[1:])
		if err != nil {
			return err
		}
		st, err := db.Get(ctx, id)
		if err != nil {
			return err
		}
		return printScene(out, st)
	case "export":
		if len(rest) != 3 {
			return fmt.Errorf("%w: export <id> <file>", errUsage)
		}
		id, err := parseID(rest[1:2])
		if err != nil {
			return err
		}
		st, err := db.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := scenestate.NewFileStore(rest[2]).Save(ctx, st); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Fprintf(out, "exported scene %d to %s\n", id, rest[2])
		return nil
	case "prune":
		pfs := flag.NewFlagSet("prune", flag.ContinueOnError)
		pfs.SetOutput(io.Discard)
		keep := pfs.Int("keep", 50, "rows to keep")
		if err := pfs.Parse(rest[1:]); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		if *keep < 0 {
			return fmt.Errorf("%w: -keep must be >= 0", errUsage)
		}
		n, err := db.Prune(ctx, *keep)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "pruned %d scenes\n", n)
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, rest[0])
}

func list(ctx context.Context, db *scenestate.SQLiteStore, args []string, out io.Writer) error {
	lfs := flag.NewFlagSet("list", flag.ContinueOnError)
	lfs.SetOutput(io.Discard)
	n := lfs.Int("n", 20, "max rows, 0 for all")
	if err := lfs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	recs, err := db.List(ctx, *n)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSAVED\tMODE\tCUBES\tHINGES")
	for _, r := range recs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\n", r.ID, r.SavedAt.Format(time.DateTime), r.Mode, r.Cubes, r.Hinges)
	}
	return tw.Flush()
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: expected one scene id", errUsage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad scene id %q", errUsage, args[0])
	}
	return id, nil
}

func printScene(out io.Writer, st *scenestate.SceneState) error {
	fmt.Fprintf(out, "scene v%d mode=%s layer=%d cubes=%d hinges=%d selected_hinges=%d\n",
		st.Version, st.Mode, st.Layer, len(st.Cubes), len(st.HingeMap), len(st.SelectedHinges))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, c := range st.Cubes {
		fixed := ""
		if c.Fixed {
			fixed = "fixed"
		}
		fmt.Fprintf(tw, "  %s\t(%g, %g, %g)\t%s\n", c.ID, c.Position[0], c.Position[1], c.Position[2], fixed)
	}
	return tw.Flush()
}
