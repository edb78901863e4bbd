package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"

	apiV1 "github.com/contentgrid/content-search/api/v1"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	jsonFormat  = "json"
	tableFormat = "table"
)

var (
	legalOutputTypes = []string{jsonFormat, tableFormat}
)

type SearchOptions struct {
	GlobalOptions

	Principal string
	Output    string
	WaitItem  string
	WaitSeq   int64
	WaitMs    int64
}

func DefaultSearchOptions() *SearchOptions {
	return &SearchOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Output:        tableFormat,
	}
}

func NewCmdSearch() *cobra.Command {
	o := DefaultSearchOptions()
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search indexed content visible to a principal.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *SearchOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Principal, "principal", "p", o.Principal, "Principal issuing the search. Required when the server runs without authentication.")
	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalOutputTypes, ", ")))
	fs.StringVar(&o.WaitItem, "wait-item", o.WaitItem, "Wait until this item is visible before searching")
	fs.Int64Var(&o.WaitSeq, "wait-sequence", o.WaitSeq, "Sequence the waited item must reach")
	fs.Int64Var(&o.WaitMs, "wait-timeout-ms", o.WaitMs, "How long to wait for visibility, in milliseconds")
}

func (o *SearchOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}

	found := false
	for _, t := range legalOutputTypes {
		if t == o.Output {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("output format must be one of %s", strings.Join(legalOutputTypes, ", "))
	}

	if o.WaitItem != "" && o.WaitSeq <= 0 {
		return fmt.Errorf("--wait-sequence is required with --wait-item")
	}

	return nil
}

func (o *SearchOptions) Run(ctx context.Context, args []string) error {
	request := apiV1.SearchRequest{Query: args[0]}
	if o.Principal != "" {
		request.RequestingPrincipalId = &o.Principal
	}
	if o.WaitItem != "" {
		request.Consistency = &apiV1.Consistency{
			ItemId:    o.WaitItem,
			Sequence:  o.WaitSeq,
			TimeoutMs: o.WaitMs,
		}
	}

	body, err := json.Marshal(request)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.ServerUrl+"/api/v1/search", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	o.authorize(req)

	resp, err := o.Client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := apiV1.Error{}
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("search failed: %s", apiErr.Message)
		}
		return fmt.Errorf("search failed: %s", resp.Status)
	}

	response := apiV1.SearchResponse{}
	if err := json.Unmarshal(data, &response); err != nil {
		return err
	}

	if o.Output == jsonFormat {
		out, err := json.MarshalIndent(response, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tFILE")
	for _, entry := range response.Entries {
		fmt.Fprintf(w, "%s\t%s\t%t\n", entry.Id, entry.Name, entry.IsFile)
	}
	return w.Flush()
}
