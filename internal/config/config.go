package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/pool-sniper/internal/types"
	"github.com/joho/godotenv"
)

var (
	WRAPPED_SOL       = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	RAYDIUM_AMM_V4    = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	OPENBOOK_ID       = solana.MustPublicKeyFromBase58("srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX")
	RAYDIUM_AUTHORITY = solana.MustPublicKeyFromBase58("5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1")
	CLOCK_SYSVAR      = solana.MustPublicKeyFromBase58("SysvarC1ock11111111111111111111111111111111")
	LAMPORTS_PER_SOL  = 1000000000
	TA_RENT_LAMPORTS  = 2039280
	TA_SIZE           = 165
)

// Config carries every runtime setting the process needs, validated
// once at startup. Required fields are rejected here, not at first use.
type Config struct {
	Payer *solana.Wallet

	RpcHttpUrl string
	RpcWsUrl   string

	GrpcAddr           string
	GrpcToken          string
	InsecureConnection bool

	RedisAddr     string
	RedisPassword string

	MySqlDsn    string
	MySqlDbName string

	// BuyAmountLamports is the fixed quote-side size of the entry swap.
	BuyAmountLamports uint64

	// SellTargetPercent is the gain over launch price that triggers
	// the exit swap, e.g. 20 means sell at 1.2x.
	SellTargetPercent float64

	SlippageBps uint64

	Port int
}

func Load() (*Config, error) {
	// Missing .env is fine in deployments that set real env vars.
	godotenv.Load()

	c := &Config{
		RpcHttpUrl:         os.Getenv("RPC_HTTP_URL"),
		RpcWsUrl:           os.Getenv("RPC_WS_URL"),
		GrpcAddr:           os.Getenv("GRPC_ENDPOINT"),
		GrpcToken:          os.Getenv("GRPC_TOKEN"),
		InsecureConnection: os.Getenv("GRPC_INSECURE") == "true",
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		MySqlDsn:           os.Getenv("MYSQL_DSN"),
		MySqlDbName:        os.Getenv("MYSQL_DB_NAME"),
	}

	pay, err := solana.WalletFromPrivateKeyBase58(os.Getenv("PAYER_PRIVATE_KEY"))
	if err != nil {
		return nil, fmt.Errorf("%w: PAYER_PRIVATE_KEY: %v", types.ErrConfiguration, err)
	}
	c.Payer = pay

	if c.RpcHttpUrl == "" {
		return nil, fmt.Errorf("%w: RPC_HTTP_URL is empty", types.ErrConfiguration)
	}
	if c.RpcWsUrl == "" {
		return nil, fmt.Errorf("%w: RPC_WS_URL is empty", types.ErrConfiguration)
	}
	if c.MySqlDsn == "" {
		return nil, fmt.Errorf("%w: MYSQL_DSN is empty", types.ErrConfiguration)
	}
	if c.MySqlDbName == "" {
		c.MySqlDbName = "pool_sniper"
	}

	c.BuyAmountLamports, err = parseUint(os.Getenv("BUY_AMOUNT_LAMPORTS"), 10000000)
	if err != nil {
		return nil, fmt.Errorf("%w: BUY_AMOUNT_LAMPORTS: %v", types.ErrConfiguration, err)
	}

	c.SellTargetPercent, err = parseFloat(os.Getenv("SELL_TARGET_PERCENT"), 20)
	if err != nil {
		return nil, fmt.Errorf("%w: SELL_TARGET_PERCENT: %v", types.ErrConfiguration, err)
	}

	c.SlippageBps, err = parseUint(os.Getenv("SLIPPAGE_BPS"), 500)
	if err != nil {
		return nil, fmt.Errorf("%w: SLIPPAGE_BPS: %v", types.ErrConfiguration, err)
	}

	port, err := parseUint(os.Getenv("PORT"), 5000)
	if err != nil {
		return nil, fmt.Errorf("%w: PORT: %v", types.ErrConfiguration, err)
	}
	c.Port = int(port)

	return c, nil
}

func parseUint(s string, def uint64) (uint64, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseUint(s, 10, 64)
}

func parseFloat(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseFloat(s, 64)
}
