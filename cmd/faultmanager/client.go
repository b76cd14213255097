// cmd/faultmanager/client.go
package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamzrod/fault-manager/internal/client"
	"github.com/tamzrod/fault-manager/internal/config"
	"github.com/tamzrod/fault-manager/internal/event"
	"github.com/tamzrod/fault-manager/internal/status"
)

func dial(cmd *cobra.Command) (*client.Client, error) {
	ep, _ := cmd.Flags().GetString("endpoint")
	if ep == "" {
		ep = config.DefaultEndpoint
	}
	return client.Dial(client.Config{Endpoint: ep})
}

func newWriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write <fault-id>",
		Short: "Write a fault id to the endpoint",
		Long:  "Sends the argument text as-is; the manager parses a leading decimal integer and records 0 when there is none.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			n, err := c.Write([]byte(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "accepted %d bytes\n", n)
			return nil
		},
	}
}

func newReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read the status text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			size, _ := cmd.Flags().GetInt("size")
			raw, _ := cmd.Flags().GetBool("raw")

			c, err := dial(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			buf := make([]byte, size)
			var out []byte
			for {
				n, err := c.Read(buf)
				out = append(out, buf[:n]...)
				if err == io.EOF {
					break
				}
				if err != nil {
					return err
				}
			}

			if !raw {
				out = []byte(strings.TrimRight(string(out), "\x00"))
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().Int("size", status.Length, "bytes requested per read")
	cmd.Flags().Bool("raw", false, "keep the trailing NUL")
	return cmd
}

func newPulseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pulse",
		Short: "Send an asynchronous event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			codeStr, _ := cmd.Flags().GetString("code")
			valueStr, _ := cmd.Flags().GetString("value")

			code, err := strconv.ParseInt(codeStr, 0, 32)
			if err != nil {
				return fmt.Errorf("code: %w", err)
			}
			value, err := strconv.ParseInt(valueStr, 0, 32)
			if err != nil {
				return fmt.Errorf("value: %w", err)
			}

			c, err := dial(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			return c.Pulse(event.Event{Code: int32(code), Value: int32(value)})
		},
	}
	cmd.Flags().String("code", strconv.Itoa(config.DefaultFaultCode), "event code (decimal or 0x hex)")
	cmd.Flags().String("value", "0", "event value (decimal or 0x hex)")
	return cmd
}

func newStatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat",
		Short: "Show endpoint attributes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			s, err := c.Stat()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "size:  %d\n", s.Size)
			fmt.Fprintf(w, "atime: %s\n", s.ATime.Format(time.RFC3339))
			fmt.Fprintf(w, "mtime: %s\n", s.MTime.Format(time.RFC3339))
			fmt.Fprintf(w, "ctime: %s\n", s.CTime.Format(time.RFC3339))
			return nil
		},
	}
}
