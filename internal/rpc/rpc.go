package rpc

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/pool-sniper/internal/types"
)

type RequestBody struct {
	Jsonrpc string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type ResponseBody struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type AccountInfo struct {
	Value *AccountInfoValue `json:"value"`
}

type AccountInfoValue struct {
	Data       []string `json:"data"`
	Owner      string   `json:"owner"`
	Lamports   uint64   `json:"lamports"`
	Executable bool     `json:"executable"`
}

type TokenAmount struct {
	Amount   string `json:"amount"`
	Decimals int    `json:"decimals"`
}

type tokenAmountResult struct {
	Value TokenAmount `json:"value"`
}

type blockhashResult struct {
	Value struct {
		Blockhash string `json:"blockhash"`
	} `json:"value"`
}

// TransactionResult is the json-encoded confirmed transaction, trimmed
// to the fields the genesis pipeline reads.
type TransactionResult struct {
	Slot        uint64 `json:"slot"`
	Transaction struct {
		Message struct {
			AccountKeys  []string                 `json:"accountKeys"`
			Instructions []TransactionInstruction `json:"instructions"`
		} `json:"message"`
	} `json:"transaction"`
}

type TransactionInstruction struct {
	ProgramIdIndex int    `json:"programIdIndex"`
	Accounts       []int  `json:"accounts"`
	Data           string `json:"data"`
}

// Client is a read-mostly JSON-RPC accessor over a single HTTP
// endpoint. Retry and transport policy stay with the endpoint; the
// client reports errors as-is.
type Client struct {
	url  string
	http *http.Client
}

func NewClient(url string) *Client {
	return &Client{
		url:  url,
		http: &http.Client{},
	}
}

func (c *Client) call(ctx context.Context, method string, params interface{}) (*ResponseBody, error) {
	requestBody := RequestBody{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	}

	reqBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reader io.ReadCloser
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		reader, err = gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer reader.Close()
	default:
		reader = resp.Body
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	var responseBody ResponseBody
	if err := json.Unmarshal(body, &responseBody); err != nil {
		return nil, err
	}

	if responseBody.Error != nil {
		return nil, errors.New(responseBody.Error.Message)
	}

	return &responseBody, nil
}

// GetTransaction fetches a confirmed transaction. A null result maps
// to ErrNotFound so callers can retry on a later signature.
func (c *Client) GetTransaction(ctx context.Context, signature string) (*TransactionResult, error) {
	params := []interface{}{
		signature,
		map[string]interface{}{
			"encoding":                       "json",
			"commitment":                     "confirmed",
			"maxSupportedTransactionVersion": 0,
		},
	}

	response, err := c.call(ctx, "getTransaction", params)
	if err != nil {
		return nil, err
	}

	if string(response.Result) == "null" {
		return nil, fmt.Errorf("%w: transaction %s", types.ErrNotFound, signature)
	}

	var result TransactionResult
	if err := json.Unmarshal(response.Result, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetAccountData fetches and base64-decodes an account's raw bytes.
func (c *Client) GetAccountData(ctx context.Context, publicKey solana.PublicKey) ([]byte, error) {
	reqParams := []interface{}{
		publicKey,
		map[string]interface{}{
			"encoding":   "base64",
			"commitment": "confirmed",
		},
	}

	response, err := c.call(ctx, "getAccountInfo", reqParams)
	if err != nil {
		return nil, err
	}

	var accountInfo AccountInfo
	if err := json.Unmarshal(response.Result, &accountInfo); err != nil {
		return nil, err
	}

	if accountInfo.Value == nil || len(accountInfo.Value.Data) == 0 {
		return nil, fmt.Errorf("%w: account %s", types.ErrNotFound, publicKey)
	}

	return base64.StdEncoding.DecodeString(accountInfo.Value.Data[0])
}

func (c *Client) GetTokenSupply(ctx context.Context, mint solana.PublicKey) (TokenAmount, error) {
	reqParams := []interface{}{
		mint,
		map[string]interface{}{
			"commitment": "confirmed",
		},
	}

	response, err := c.call(ctx, "getTokenSupply", reqParams)
	if err != nil {
		return TokenAmount{}, err
	}

	var result tokenAmountResult
	if err := json.Unmarshal(response.Result, &result); err != nil {
		return TokenAmount{}, err
	}

	return result.Value, nil
}

// GetTokenAccountBalance returns the raw amount held by a token
// account, used to size the exit swap.
func (c *Client) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	reqParams := []interface{}{
		account,
		map[string]interface{}{
			"commitment": "confirmed",
		},
	}

	response, err := c.call(ctx, "getTokenAccountBalance", reqParams)
	if err != nil {
		return 0, err
	}

	var result tokenAmountResult
	if err := json.Unmarshal(response.Result, &result); err != nil {
		return 0, err
	}

	return strconv.ParseUint(result.Value.Amount, 10, 64)
}

func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	params := []interface{}{
		map[string]interface{}{
			"commitment": "confirmed",
		},
	}

	response, err := c.call(ctx, "getLatestBlockhash", params)
	if err != nil {
		return solana.Hash{}, err
	}

	var result blockhashResult
	if err := json.Unmarshal(response.Result, &result); err != nil {
		return solana.Hash{}, err
	}

	return solana.HashFromBase58(result.Value.Blockhash)
}

func (c *Client) SendTransaction(ctx context.Context, transaction *solana.Transaction) (solana.Signature, error) {
	msg, err := transaction.MarshalBinary()
	if err != nil {
		return solana.Signature{}, err
	}
	txBase64 := base64.StdEncoding.EncodeToString(msg)

	params := []interface{}{
		txBase64,
		map[string]interface{}{
			"encoding":            "base64",
			"skipPreflight":       true,
			"maxRetries":          1,
			"preflightCommitment": "confirmed",
		},
	}

	response, err := c.call(ctx, "sendTransaction", params)
	if err != nil {
		return solana.Signature{}, err
	}

	var sig string
	if err := json.Unmarshal(response.Result, &sig); err != nil {
		return solana.Signature{}, err
	}

	return solana.SignatureFromBase58(sig)
}
