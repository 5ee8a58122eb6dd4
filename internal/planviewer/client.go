package planviewer

import (
	"encoding/json"
	"fmt"
	"net/url"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"

	"github.com/lox/idleplanner/internal/diagnosticsserver"
)

// Listen dials addr's diagnostics stream and forwards every decoded
// snapshot to program via (*tea.Program).Send, the same
// goroutine-reads-the-socket/program-receives-the-update split
// internal/client.Client uses to keep the poker TUI's network reads
// off the render goroutine.
func Listen(program *tea.Program, addr string) {
	wsURL := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		program.Send(ConnErrMsg{Err: fmt.Errorf("dial %s: %w", addr, err)})
		return
	}
	defer conn.Close()

	for {
		var msg diagnosticsserver.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				program.Send(ConnErrMsg{Err: err})
				return
			}
			program.Send(ConnClosedMsg{})
			return
		}

		if msg.Type != diagnosticsserver.MessageTypeSnapshot {
			continue
		}

		var snapshot diagnosticsserver.SnapshotData
		if err := json.Unmarshal(msg.Data, &snapshot); err != nil {
			continue
		}
		program.Send(SnapshotMsg(snapshot))
	}
}
