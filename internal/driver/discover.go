package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilepathPair points at one problem's architecture and task files.
type FilepathPair struct {
	Tsk string
	Cfg string
}

// filesFromFolder takes the first *.tsk and first *.cfg file found directly
// in folder, per spec.md §6: any further matches in the same folder are
// ignored. A stem mismatch between the two is only ever worth a warning,
// never a hard failure.
func filesFromFolder(folder string) (FilepathPair, bool, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return FilepathPair{}, false, fmt.Errorf("read folder %q: %w", folder, err)
	}

	var tsk, cfg string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch {
		case tsk == "" && strings.HasSuffix(e.Name(), ".tsk"):
			tsk = filepath.Join(folder, e.Name())
		case cfg == "" && strings.HasSuffix(e.Name(), ".cfg"):
			cfg = filepath.Join(folder, e.Name())
		}
	}

	if tsk == "" || cfg == "" {
		return FilepathPair{}, false, nil
	}

	if strings.TrimSuffix(filepath.Base(tsk), ".tsk") != strings.TrimSuffix(filepath.Base(cfg), ".cfg") {
		fmt.Fprintf(os.Stderr, "warning: mismatched file names %q and %q\n", tsk, cfg)
	}

	return FilepathPair{Tsk: tsk, Cfg: cfg}, true, nil
}

// DiscoverCase returns the single filepath pair in folder, per --case.
func DiscoverCase(folder string) ([]FilepathPair, error) {
	pair, ok, err := filesFromFolder(folder)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return []FilepathPair{pair}, nil
}

// DiscoverCollection recursively collects one filepath pair per folder and
// subfolder under root that has at least one *.tsk and one *.cfg file, per
// --collection.
func DiscoverCollection(root string) ([]FilepathPair, error) {
	var pairs []FilepathPair

	pair, ok, err := filesFromFolder(root)
	if err != nil {
		return nil, err
	}
	if ok {
		pairs = append(pairs, pair)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read folder %q: %w", root, err)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub, err := DiscoverCollection(filepath.Join(root, e.Name()))
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, sub...)
	}

	return pairs, nil
}
