package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	apiV1 "github.com/contentgrid/content-search/api/v1"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type StatusOptions struct {
	GlobalOptions

	Sequence int64
	WaitMs   int64
}

func DefaultStatusOptions() *StatusOptions {
	return &StatusOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdStatus() *cobra.Command {
	o := DefaultStatusOptions()
	cmd := &cobra.Command{
		Use:   "status ITEM_ID",
		Short: "Display the index watermark of an item.",
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

func (o *StatusOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.Int64VarP(&o.Sequence, "sequence", "s", o.Sequence, "Report whether this sequence is visible")
	fs.Int64Var(&o.WaitMs, "wait-timeout-ms", o.WaitMs, "How long to wait for visibility, in milliseconds")
}

func (o *StatusOptions) Run(ctx context.Context, args []string) error {
	params := url.Values{}
	params.Set("itemId", args[0])
	if o.Sequence > 0 {
		params.Set("sequence", strconv.FormatInt(o.Sequence, 10))
	}
	if o.WaitMs > 0 {
		params.Set("timeoutMs", strconv.FormatInt(o.WaitMs, 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.ServerUrl+"/api/v1/index/status?"+params.Encode(), nil)
	if err != nil {
		return err
	}
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
			return fmt.Errorf("status failed: %s", apiErr.Message)
		}
		return fmt.Errorf("status failed: %s", resp.Status)
	}

	status := apiV1.IndexStatus{}
	if err := json.Unmarshal(data, &status); err != nil {
		return err
	}

	fmt.Printf("visible: %t\nwatermark: %d\n", status.Visible, status.Watermark)
	return nil
}
