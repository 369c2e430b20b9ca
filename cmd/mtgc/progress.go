package main

import (
	"fmt"
	"io"
	"path/filepath"

	"mtgcollections/cmd/mtgc/ui"
	"mtgcollections/internal/collection"
	"mtgcollections/internal/types"
)

// progressObserver prints batch progress for the operator and forwards
// every event to the log observer.
type progressObserver struct {
	collection.LogObserver
	out    io.Writer
	styles ui.Styles
}

func (o progressObserver) OnStart(total int) {
	o.LogObserver.OnStart(total)
	fmt.Fprintf(o.out, "Found %d image files\n", total)
}

func (o progressObserver) OnFile(index, total int, path string) {
	o.LogObserver.OnFile(index, total, path)
	fmt.Fprintf(o.out, "%s %s\n",
		o.styles.Muted.Render(fmt.Sprintf("Processing file %d/%d:", index, total)),
		filepath.Base(path))
}

func (o progressObserver) OnFileFailed(index, total int, path string, err error) {
	o.LogObserver.OnFileFailed(index, total, path, err)
	fmt.Fprintf(o.out, "%s %s: %v\n", o.styles.Warning.Render("Skipped"), filepath.Base(path), err)
}

func (o progressObserver) OnDone(c types.Collection, failed int) {
	o.LogObserver.OnDone(c, failed)
	msg := fmt.Sprintf("Extracted %d cards", c.Len())
	if failed > 0 {
		msg += fmt.Sprintf(" (%d files skipped)", failed)
	}
	fmt.Fprintln(o.out, o.styles.Success.Render(msg))
}
