package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fireboltd/fireboltd/pkg/output"
	"github.com/fireboltd/fireboltd/pkg/state"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func showStatus() error {
	printer := output.New()

	st, err := state.Load()
	if err != nil {
		if os.IsNotExist(err) {
			printer.Info("no daemon running")
			return nil
		}
		return err
	}

	summary := output.GatewaySummary{
		Addr:    st.Addr,
		PID:     st.PID,
		Status:  "stopped",
		Started: time.Since(st.StartedAt).Round(time.Second).String(),
	}

	if state.IsRunning(st) {
		summary.Status = "running"
		if apiStatus, err := fetchStatus(st.Addr); err == nil {
			summary.Sessions = apiStatus.Sessions
			summary.Methods = apiStatus.Methods
			summary.DeviceReady = apiStatus.DeviceReady
		}
	}

	printer.GatewayStatus(summary)
	return nil
}

type apiStatus struct {
	Version     string `json:"version"`
	Sessions    int    `json:"sessions"`
	Methods     int    `json:"methods"`
	DeviceReady bool   `json:"deviceReady"`
}

func fetchStatus(addr string) (*apiStatus, error) {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://localhost%s/api/status", addr))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var status apiStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, err
	}
	return &status, nil
}
