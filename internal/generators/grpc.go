package generators

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"log"
	"time"

	pb "github.com/iqbalbaharum/solana-protos/pb"
	"github.com/mr-tron/base58"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
)

var kacp = keepalive.ClientParameters{
	Time:                10 * time.Minute,
	Timeout:             20 * time.Second,
	PermitWithoutStream: true,
}

// TxNotification is a transaction observed on the Geyser stream,
// trimmed to what the genesis pipeline needs to pre-filter and decode.
type TxNotification struct {
	Source       string          `json:"source"`
	Signature    string          `json:"signature"`
	AccountKeys  []string        `json:"accountKeys"`
	Instructions []TxInstruction `json:"instructions"`
	Slot         uint64          `json:"slot"`
	Failed       bool            `json:"failed"`
}

type TxInstruction struct {
	ProgramIdIndex uint32 `json:"programIdIndex"`
	Accounts       []byte `json:"accounts"`
	Data           []byte `json:"data"`
}

type GrpcClient struct {
	conn   *grpc.ClientConn
	client pb.GeyserClient
}

func GrpcConnect(address string, plaintext bool) (*GrpcClient, error) {
	var opts []grpc.DialOption
	if plaintext {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	} else {
		pool, _ := x509.SystemCertPool()
		creds := credentials.NewClientTLSFromCert(pool, "")
		opts = append(opts, grpc.WithTransportCredentials(creds))
	}

	opts = append(opts, grpc.WithKeepaliveParams(kacp))
	opts = append(opts, grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(1<<30)))

	log.Println("Starting grpc client, connecting to", address)
	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, err
	}

	return &GrpcClient{conn, pb.NewGeyserClient(conn)}, nil
}

func (g *GrpcClient) CloseConnection() error {
	if g.conn != nil {
		return g.conn.Close()
	}
	return nil
}

// SubscribeTransactions streams every non-vote transaction touching
// one of the given accounts into txChannel until the stream breaks.
func (g *GrpcClient) SubscribeTransactions(sourceName string, grpcToken string, accountInclude []string, txChannel chan<- TxNotification) error {
	if g.client == nil {
		return errors.New("GRPC not connected")
	}

	vote := false
	failed := false

	subscription := pb.SubscribeRequest{
		Slots:        make(map[string]*pb.SubscribeRequestFilterSlots),
		Blocks:       make(map[string]*pb.SubscribeRequestFilterBlocks),
		BlocksMeta:   make(map[string]*pb.SubscribeRequestFilterBlocksMeta),
		Accounts:     make(map[string]*pb.SubscribeRequestFilterAccounts),
		Transactions: make(map[string]*pb.SubscribeRequestFilterTransactions),
		Entry:        make(map[string]*pb.SubscribeRequestFilterEntry),
		Commitment:   pb.CommitmentLevel_PROCESSED.Enum(),
	}

	if len(accountInclude) > 0 {
		subscription.Transactions[accountInclude[0]] = &pb.SubscribeRequestFilterTransactions{
			Vote:           &vote,
			Failed:         &failed,
			AccountInclude: accountInclude,
		}
	}

	ctx := context.Background()
	if grpcToken != "" {
		md := metadata.New(map[string]string{"x-token": grpcToken})
		ctx = metadata.NewOutgoingContext(ctx, md)
	}

	stream, err := g.client.Subscribe(ctx, grpc.MaxCallRecvMsgSize(100<<20))
	if err != nil {
		return err
	}

	if err := stream.Send(&subscription); err != nil {
		return err
	}

	for {
		resp, err := stream.Recv()
		if err != nil {
			return fmt.Errorf("geyser %s: %w", sourceName, err)
		}

		txInfo := resp.GetTransaction()
		if txInfo == nil {
			continue
		}

		message := txInfo.Transaction.Transaction.Message
		meta := txInfo.Transaction.Meta

		txChannel <- TxNotification{
			Source:       sourceName,
			Signature:    base58.Encode(txInfo.Transaction.Signature),
			AccountKeys:  convertAccountKeys(message.AccountKeys),
			Instructions: convertInstructions(message.Instructions),
			Slot:         txInfo.Slot,
			Failed:       meta.Err != nil,
		}
	}
}

func convertAccountKeys(accountKeys [][]byte) []string {
	encodedKeys := make([]string, len(accountKeys))
	for i, key := range accountKeys {
		encodedKeys[i] = base58.Encode(key)
	}
	return encodedKeys
}

func convertInstructions(instructions []*pb.CompiledInstruction) []TxInstruction {
	converted := make([]TxInstruction, len(instructions))
	for i, instr := range instructions {
		converted[i] = TxInstruction{
			ProgramIdIndex: instr.ProgramIdIndex,
			Accounts:       instr.Accounts,
			Data:           instr.Data,
		}
	}
	return converted
}
