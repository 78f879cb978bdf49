package rpc

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/websocket"
)

// WsRpc multiplexes solana account subscriptions over one websocket
// connection. Each subscription id owns exactly one callback; the
// read loop dispatches notifications and never retries delivery, so
// only the most recent observed state is assumed delivered.
type WsRpc struct {
	conn *websocket.Conn
	url  string

	writeMu sync.Mutex

	mu       sync.Mutex
	nextID   int
	pending  map[int]chan subscribeReply
	handlers map[uint64]func(amount uint64)

	done chan struct{}
}

type subscribeReply struct {
	subID uint64
	err   error
}

type wsMessage struct {
	ID     int                   `json:"id"`
	Result json.RawMessage       `json:"result"`
	Error  *RPCError             `json:"error"`
	Method string                `json:"method"`
	Params *wsNotificationParams `json:"params"`
}

type wsNotificationParams struct {
	Subscription uint64 `json:"subscription"`
	Result       struct {
		Value struct {
			Data struct {
				Parsed struct {
					Info struct {
						TokenAmount TokenAmount `json:"tokenAmount"`
					} `json:"info"`
				} `json:"parsed"`
			} `json:"data"`
		} `json:"value"`
	} `json:"result"`
}

func NewWsRpc(url string) (*WsRpc, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}

	w := &WsRpc{
		conn:     conn,
		url:      url,
		pending:  make(map[int]chan subscribeReply),
		handlers: make(map[uint64]func(uint64)),
		done:     make(chan struct{}),
	}

	go w.readLoop()

	return w, nil
}

func (w *WsRpc) readLoop() {
	defer close(w.done)
	for {
		_, message, err := w.conn.ReadMessage()
		if err != nil {
			log.Println("ws read:", err)
			w.failPending(err)
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Println("ws unmarshal:", err)
			continue
		}

		if msg.Method == "accountNotification" && msg.Params != nil {
			w.dispatch(msg.Params)
			continue
		}

		if msg.ID != 0 {
			w.resolve(&msg)
		}
	}
}

func (w *WsRpc) dispatch(params *wsNotificationParams) {
	w.mu.Lock()
	handler := w.handlers[params.Subscription]
	w.mu.Unlock()

	if handler == nil {
		return
	}

	amount, err := strconv.ParseUint(params.Result.Value.Data.Parsed.Info.TokenAmount.Amount, 10, 64)
	if err != nil {
		log.Println("ws token amount:", err)
		return
	}

	// The handler owns its own concurrency; delivery stays on the read
	// loop so notifications for one subscription keep arrival order.
	handler(amount)
}

func (w *WsRpc) resolve(msg *wsMessage) {
	w.mu.Lock()
	ch, ok := w.pending[msg.ID]
	if ok {
		delete(w.pending, msg.ID)
	}
	w.mu.Unlock()

	if !ok {
		return
	}

	if msg.Error != nil {
		ch <- subscribeReply{err: errString(msg.Error.Message)}
		return
	}

	var subID uint64
	if err := json.Unmarshal(msg.Result, &subID); err != nil {
		// accountUnsubscribe replies with a bool; drop it silently.
		ch <- subscribeReply{}
		return
	}

	ch <- subscribeReply{subID: subID}
}

func (w *WsRpc) failPending(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, ch := range w.pending {
		delete(w.pending, id)
		ch <- subscribeReply{err: err}
	}
}

// SubscribeTokenAccount subscribes to balance changes of a token
// account. The callback receives the account's current raw amount,
// at-least-once with latest-state semantics.
func (w *WsRpc) SubscribeTokenAccount(account solana.PublicKey, commitment string, callback func(amount uint64)) (uint64, error) {
	w.mu.Lock()
	w.nextID++
	id := w.nextID
	ch := make(chan subscribeReply, 1)
	w.pending[id] = ch
	w.mu.Unlock()

	request := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "accountSubscribe",
		"params": []interface{}{
			account.String(),
			map[string]interface{}{
				"encoding":   "jsonParsed",
				"commitment": commitment,
			},
		},
	}

	if err := w.send(request); err != nil {
		w.mu.Lock()
		delete(w.pending, id)
		w.mu.Unlock()
		return 0, err
	}

	reply := <-ch
	if reply.err != nil {
		return 0, reply.err
	}

	w.mu.Lock()
	w.handlers[reply.subID] = callback
	w.mu.Unlock()

	return reply.subID, nil
}

// Unsubscribe removes the handler and tells the node to stop
// notifying. Calling it for an unknown or already-released id is a
// no-op.
func (w *WsRpc) Unsubscribe(subID uint64) error {
	w.mu.Lock()
	_, active := w.handlers[subID]
	if active {
		delete(w.handlers, subID)
	}
	w.nextID++
	id := w.nextID
	w.mu.Unlock()

	if !active {
		return nil
	}

	request := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "accountUnsubscribe",
		"params":  []interface{}{subID},
	}

	return w.send(request)
}

func (w *WsRpc) send(request map[string]interface{}) error {
	data, err := json.Marshal(request)
	if err != nil {
		return err
	}

	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

func (w *WsRpc) Close() error {
	w.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return w.conn.Close()
}

type errString string

func (e errString) Error() string { return string(e) }
