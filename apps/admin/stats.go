package main

import (
	"context"
	"fmt"
	"text/tabwriter"
)

func (cli *commandLine) stats() error {
	stats, err := cli.docSvc.Stats(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Students\t%d\n", stats.Students)
	_, _ = fmt.Fprintf(w, "Complete\t%d\n", stats.Complete)
	_, _ = fmt.Fprintf(w, "Partially submitted\t%d\n", stats.PartiallySubmitted)
	_, _ = fmt.Fprintf(w, "No documents\t%d\n", stats.NoDocuments)
	_, _ = fmt.Fprintf(w, "With pending documents\t%d\n", stats.WithPending)
	_, _ = fmt.Fprintf(w, "With missing documents\t%d\n", stats.WithMissing)
	_, _ = fmt.Fprintf(w, "With rejected documents\t%d\n", stats.WithRejected)
	return w.Flush()
}
