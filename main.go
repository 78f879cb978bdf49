package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"sync"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/go-chi/chi/v5"
	"github.com/iqbalbaharum/pool-sniper/internal/adapter"
	"github.com/iqbalbaharum/pool-sniper/internal/coder"
	"github.com/iqbalbaharum/pool-sniper/internal/config"
	"github.com/iqbalbaharum/pool-sniper/internal/generators"
	"github.com/iqbalbaharum/pool-sniper/internal/genesis"
	"github.com/iqbalbaharum/pool-sniper/internal/handler"
	"github.com/iqbalbaharum/pool-sniper/internal/instructions"
	"github.com/iqbalbaharum/pool-sniper/internal/rpc"
	"github.com/iqbalbaharum/pool-sniper/internal/storage"
	"github.com/iqbalbaharum/pool-sniper/internal/types"
	"github.com/iqbalbaharum/pool-sniper/internal/watcher"
)

type Server struct {
	Router *chi.Mux
}

func CreateServer() *Server {
	return &Server{
		Router: handler.CreateRoutes(),
	}
}

var (
	wg        sync.WaitGroup
	txChannel chan generators.TxNotification
)

func main() {
	numCPU := runtime.NumCPU() * 2
	maxProcs := runtime.GOMAXPROCS(0)
	log.Printf("Number of logical CPUs available: %d", numCPU)
	log.Printf("Number of CPUs being used: %d", maxProcs)

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Print(err)
		return
	}

	redisClient, err := adapter.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, 0)
	if err != nil {
		log.Fatalf("Failed to initialize Redis client: %v", err)
	}

	mySqlClient, err := adapter.NewMySQLClient(cfg.MySqlDsn, cfg.MySqlDbName)
	if err != nil {
		log.Fatalf("Failed to initialize SQL client: %v", err)
	}

	storage.Init(mySqlClient, redisClient)

	log.Print("Initialized ENVIRONMENT successfully")

	rpcClient := rpc.NewClient(cfg.RpcHttpUrl)

	wsClient, err := rpc.NewWsRpc(cfg.RpcWsUrl)
	if err != nil {
		log.Fatalf("Failed to connect websocket RPC: %v", err)
	}

	decoder := genesis.NewDecoder(config.RAYDIUM_AMM_V4, rpcClient, storage.Pool, storage.Cache)
	executor := instructions.NewExecutor(cfg.Payer, rpcClient, cfg.SlippageBps, storage.TradeLog)

	grpcClient, err := generators.GrpcConnect(cfg.GrpcAddr, cfg.InsecureConnection)
	if err != nil {
		log.Fatalf("Error in GRPC connection: %s", err)
	}
	defer func() {
		if err := grpcClient.CloseConnection(); err != nil {
			log.Printf("Error closing gRPC connection: %v", err)
		}
	}()

	txChannel = make(chan generators.TxNotification)

	var processed sync.Map

	// Create a worker pool
	for i := 0; i < numCPU; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for response := range txChannel {
				if _, exists := processed.Load(response.Signature); !exists {
					processed.Store(response.Signature, true)
					processTx(cfg, decoder, executor, wsClient, response)

					time.AfterFunc(1*time.Minute, func() {
						processed.Delete(response.Signature)
					})
				}
			}
		}()
	}

	listenFor(
		grpcClient,
		"geyser",
		cfg.GrpcToken,
		[]string{
			config.RAYDIUM_AMM_V4.String(),
		}, txChannel, &wg)

	server := CreateServer()
	port := fmt.Sprintf(":%d", cfg.Port)
	fmt.Printf("server running on port%s \n", port)

	http.ListenAndServe(port, server.Router)

	wg.Wait()
}

// processTx runs one observed transaction through the genesis pipeline
// and, when a record comes out, hands the pool to a watch session.
func processTx(cfg *config.Config, decoder *genesis.Decoder, executor *instructions.Executor, wsClient *rpc.WsRpc, response generators.TxNotification) {
	if response.Failed {
		return
	}
	if !touchesGenesis(response) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rec, err := decoder.ProcessSignature(ctx, response.Signature)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			log.Printf("%s | transaction not visible yet", response.Signature)
			return
		}
		log.Printf("%s | genesis decode: %v", response.Signature, err)
		return
	}
	if rec == nil {
		return
	}

	session, err := watcher.NewSession(
		rec,
		cfg.BuyAmountLamports,
		cfg.SellTargetPercent,
		executor,
		storage.Pool,
		wsClient,
		storage.Session,
	)
	if err != nil {
		log.Printf("%s | session: %v", rec.AmmID, err)
		return
	}

	go func() {
		if err := session.Run(context.Background()); err != nil {
			log.Printf("%s | session run: %v", rec.AmmID, err)
		}
	}()
}

// touchesGenesis is a cheap local pre-filter so only pool-creation
// transactions pay for the RPC round trip.
func touchesGenesis(response generators.TxNotification) bool {
	program := config.RAYDIUM_AMM_V4.String()

	for _, ins := range response.Instructions {
		idx := int(ins.ProgramIdIndex)
		if idx >= len(response.AccountKeys) {
			continue
		}
		if response.AccountKeys[idx] == program && coder.IsInitialize2(ins.Data) {
			return true
		}
	}

	return false
}

// Listening geyser for new pool transactions
func listenFor(client *generators.GrpcClient, name string, token string, addresses []string, txChannel chan generators.TxNotification, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := client.SubscribeTransactions(name, token, addresses, txChannel)
		if err != nil {
			log.Printf("Error in gRPC subscription: %v", err)
		}
	}()
}
