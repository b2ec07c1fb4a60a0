package main

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/emptypocketstudios/clipshare/internal/ipc"
	"github.com/emptypocketstudios/clipshare/internal/message"
	"github.com/emptypocketstudios/clipshare/internal/wire"
)

func newStatusCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show sync state and connected peers",
		Long: `Displays the state of a running clipshare daemon: its role, the
outbound peer connection, inbound peers, and activity counters.

The local daemon is queried via the IPC socket. Pass --peer to query a
remote daemon's listen port over TCP instead.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runStatus(cmd, v) },
	}

	f := cmd.Flags()
	f.String("peer", "", "query this daemon address (host:port) instead of the local IPC socket")
	f.String("source", defaultSource(), "source identifier")
	f.Bool("json", false, "output raw JSON")
	addConfigFlag(cmd)

	return cmd
}

func runStatus(cmd *cobra.Command, v *viper.Viper) error {
	source := v.GetString("source")
	jsonOut := v.GetBool("json")

	var (
		conn      net.Conn
		transport string
		err       error
	)

	if !cmd.Flags().Changed("peer") && ipc.IsRunning() {
		conn, err = ipc.Dial()
		if err == nil {
			transport = fmt.Sprintf("ipc (%s)", ipc.SocketPath())
		} else {
			conn = nil
		}
	}

	if conn == nil {
		peerAddr := v.GetString("peer")
		if peerAddr == "" {
			return fmt.Errorf("no local daemon running (pass --peer to query a remote one)")
		}
		conn, err = net.DialTimeout("tcp", peerAddr, 5*time.Second)
		if err != nil {
			return fmt.Errorf("connect %s: %w", peerAddr, err)
		}
		transport = fmt.Sprintf("tcp (%s)", peerAddr)
	}
	defer conn.Close()

	wc := wire.New(conn)
	if err := wc.WriteMsg(&message.Message{Type: message.TypeStatus, Source: source}); err != nil {
		return fmt.Errorf("status request: %w", err)
	}
	wc.SetReadDeadline(5 * time.Second)
	resp, err := wc.ReadMsg()
	if err != nil {
		return fmt.Errorf("status read: %w", err)
	}
	if resp.Type == message.TypeError {
		return fmt.Errorf("status: %s", resp.Error)
	}

	if jsonOut {
		enc, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(enc))
		return nil
	}

	printStatus(resp, transport)
	return nil
}

func printStatus(resp *message.Message, transport string) {
	w := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Role:\t%s\n", resp.Role)
	fmt.Fprintf(w, "Source:\t%s\n", resp.Source)
	fmt.Fprintf(w, "Transport:\t%s\n", transport)

	if up := resp.Upstream; up != nil {
		state := "connecting"
		if up.Connected {
			state = "connected"
		}
		switch {
		case up.Connected && !up.ConnectedAt.IsZero():
			fmt.Fprintf(w, "Peer:\t%s (%s since %s)\n", up.Addr, state, fmtAge(up.ConnectedAt))
		case !up.LastAttempt.IsZero():
			fmt.Fprintf(w, "Peer:\t%s (%s, last attempt %s)\n", up.Addr, state, fmtAge(up.LastAttempt))
		default:
			fmt.Fprintf(w, "Peer:\t%s (%s)\n", up.Addr, state)
		}
	}
	if lc := resp.LastChange; lc != nil {
		fmt.Fprintf(w, "Last change:\t%s, %s, %d bytes\n", lc.Origin, fmtAge(lc.When), lc.Bytes)
	}
	if st := resp.Stats; st != nil {
		fmt.Fprintf(w, "Polls:\t%d (%d failed)\n", st.Polls, st.PollFailures)
		fmt.Fprintf(w, "Local changes:\t%d\n", st.LocalChanges)
		fmt.Fprintf(w, "Remote applies:\t%d\n", st.RemoteApplies)
		if st.SendFailures > 0 {
			fmt.Fprintf(w, "Send failures:\t%d\n", st.SendFailures)
		}
	}
	fmt.Fprintln(w)
	_ = w.Flush()

	if len(resp.Peers) == 0 {
		fmt.Println("No inbound peers connected.")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "ADDR\tCONNECTED\tLAST SEEN\n")
	_, _ = fmt.Fprintf(tw, "----\t---------\t---------\n")
	for _, p := range resp.Peers {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Addr, tsAge(p.ConnectedAt), tsAge(p.LastSeen))
	}
	_ = tw.Flush()
}

func tsAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return fmtAge(t)
}

func fmtAge(t time.Time) string {
	age := time.Since(t).Round(time.Second)
	if age < time.Minute {
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	}
	if age < time.Hour {
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	}
	return t.Format("15:04:05")
}
