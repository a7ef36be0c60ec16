package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var (
		server     string
		workflowID string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Fetch evaluation reports from a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{Timeout: 10 * time.Second}
			return fetchReport(cmd.OutOrStdout(), client, server, workflowID)
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://localhost:5001", "base URL of the quizforge server")
	cmd.Flags().StringVar(&workflowID, "workflow-id", "", "report a single workflow")
	return cmd
}

func fetchReport(w io.Writer, client *http.Client, server, workflowID string) error {
	u := strings.TrimRight(server, "/") + "/evaluation/report"
	if workflowID != "" {
		u += "?workflow_id=" + url.QueryEscape(workflowID)
	}

	resp, err := client.Get(u)
	if err != nil {
		return fmt.Errorf("fetch report: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Report  json.RawMessage `json:"report"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode report: %w", err)
	}
	if resp.StatusCode != http.StatusOK || body.Status != "success" {
		return fmt.Errorf("report request failed (%d): %s", resp.StatusCode, body.Message)
	}

	var pretty any
	if err := json.Unmarshal(body.Report, &pretty); err != nil {
		return fmt.Errorf("decode report: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(pretty)
}
