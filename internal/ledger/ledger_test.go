package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
)

func writeKeypairFile(t *testing.T, key solana.PrivateKey) string {
	t.Helper()

	raw := make([]int, len(key))
	for i, b := range key {
		raw[i] = int(b)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("Failed to marshal keypair: %v", err)
	}

	path := filepath.Join(t.TempDir(), "identity.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("Failed to write keypair file: %v", err)
	}
	return path
}

func TestLoadKeypairSigner(t *testing.T) {
	wallet := solana.NewWallet()
	path := writeKeypairFile(t, wallet.PrivateKey)

	signer, err := LoadKeypairSigner(path)
	if err != nil {
		t.Fatalf("LoadKeypairSigner failed: %v", err)
	}

	if !signer.PublicKey().Equals(wallet.PublicKey()) {
		t.Errorf("PublicKey() = %s, want %s", signer.PublicKey(), wallet.PublicKey())
	}
}

func TestLoadKeypairSignerMissingFile(t *testing.T) {
	_, err := LoadKeypairSigner(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("LoadKeypairSigner succeeded for a missing file, want error")
	}
}

func TestKeypairSignerSignsTransaction(t *testing.T) {
	wallet := solana.NewWallet()
	signer := &KeypairSigner{key: wallet.PrivateKey}
	receiver := solana.NewWallet().PublicKey()

	ix := system.NewTransferInstruction(1_000, wallet.PublicKey(), receiver).Build()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		solana.Hash{},
		solana.TransactionPayer(wallet.PublicKey()),
	)
	if err != nil {
		t.Fatalf("Failed to build transaction: %v", err)
	}

	if err := signer.SignTransaction(tx); err != nil {
		t.Fatalf("SignTransaction failed: %v", err)
	}

	if len(tx.Signatures) != 1 {
		t.Fatalf("got %d signatures, want 1", len(tx.Signatures))
	}
	if err := tx.VerifySignatures(); err != nil {
		t.Errorf("VerifySignatures failed: %v", err)
	}
}

func TestBuildTransferTargetsSystemProgram(t *testing.T) {
	client := NewClient("http://localhost:0")
	from := solana.NewWallet().PublicKey()
	to := solana.NewWallet().PublicKey()

	ix := client.BuildTransfer(from, to, 42)
	if !ix.ProgramID().Equals(system.ProgramID) {
		t.Errorf("ProgramID = %s, want system program", ix.ProgramID())
	}
}

// stubRPC serves canned JSON-RPC results keyed by method name.
func stubRPC(t *testing.T, results map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Id     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("Failed to decode RPC request: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		result, ok := results[req.Method]
		if !ok {
			t.Errorf("Unexpected RPC method %q", req.Method)
			http.Error(w, "unknown method", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","result":%s,"id":%s}`, result, req.Id)
	}))
}

func testClient(endpoint string) *Client {
	return &Client{
		rpc:             rpc.New(endpoint),
		commitment:      rpc.CommitmentFinalized,
		confirmTimeout:  2 * time.Second,
		confirmInterval: 10 * time.Millisecond,
	}
}

func TestGetBalance(t *testing.T) {
	server := stubRPC(t, map[string]string{
		"getBalance": `{"context":{"slot":100},"value":8000000000}`,
	})
	defer server.Close()

	client := testClient(server.URL)
	balance, err := client.GetBalance(context.Background(), solana.NewWallet().PublicKey())
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if balance != 8_000_000_000 {
		t.Errorf("balance = %d, want 8000000000", balance)
	}
}

func TestLatestBlockhash(t *testing.T) {
	blockhash := solana.NewWallet().PublicKey().String()
	server := stubRPC(t, map[string]string{
		"getLatestBlockhash": fmt.Sprintf(
			`{"context":{"slot":100},"value":{"blockhash":"%s","lastValidBlockHeight":100}}`, blockhash),
	})
	defer server.Close()

	client := testClient(server.URL)
	hash, err := client.LatestBlockhash(context.Background())
	if err != nil {
		t.Fatalf("LatestBlockhash failed: %v", err)
	}
	if hash.String() != blockhash {
		t.Errorf("blockhash = %s, want %s", hash, blockhash)
	}
}

func TestSignAndBroadcastFinalized(t *testing.T) {
	sig := solana.Signature{}.String()
	server := stubRPC(t, map[string]string{
		"sendTransaction": fmt.Sprintf("%q", sig),
		"getSignatureStatuses": `{"context":{"slot":1},` +
			`"value":[{"slot":1,"confirmations":null,"err":null,"confirmationStatus":"finalized"}]}`,
	})
	defer server.Close()

	wallet := solana.NewWallet()
	client := testClient(server.URL)
	signer := &KeypairSigner{key: wallet.PrivateKey}
	ix := client.BuildTransfer(wallet.PublicKey(), solana.NewWallet().PublicKey(), 1_000)

	got, err := client.SignAndBroadcast(context.Background(), ix, signer, solana.Hash{})
	if err != nil {
		t.Fatalf("SignAndBroadcast failed: %v", err)
	}
	if got.String() != sig {
		t.Errorf("signature = %s, want %s", got, sig)
	}
}

func TestSignAndBroadcastFailedOnChain(t *testing.T) {
	sig := solana.Signature{}.String()
	server := stubRPC(t, map[string]string{
		"sendTransaction": fmt.Sprintf("%q", sig),
		"getSignatureStatuses": `{"context":{"slot":1},` +
			`"value":[{"slot":1,"confirmations":null,"err":{"InstructionError":[0,{"Custom":1}]},"confirmationStatus":"processed"}]}`,
	})
	defer server.Close()

	wallet := solana.NewWallet()
	client := testClient(server.URL)
	signer := &KeypairSigner{key: wallet.PrivateKey}
	ix := client.BuildTransfer(wallet.PublicKey(), solana.NewWallet().PublicKey(), 1_000)

	_, err := client.SignAndBroadcast(context.Background(), ix, signer, solana.Hash{})
	if err == nil {
		t.Fatal("SignAndBroadcast succeeded for a failed transaction, want error")
	}
	if !strings.Contains(err.Error(), "failed on chain") {
		t.Errorf("error = %q, want on-chain failure", err)
	}
}

func TestSignAndBroadcastConfirmationTimeout(t *testing.T) {
	sig := solana.Signature{}.String()
	server := stubRPC(t, map[string]string{
		"sendTransaction": fmt.Sprintf("%q", sig),
		// Never progresses past processed.
		"getSignatureStatuses": `{"context":{"slot":1},` +
			`"value":[{"slot":1,"confirmations":1,"err":null,"confirmationStatus":"processed"}]}`,
	})
	defer server.Close()

	wallet := solana.NewWallet()
	client := testClient(server.URL)
	client.confirmTimeout = 50 * time.Millisecond
	signer := &KeypairSigner{key: wallet.PrivateKey}
	ix := client.BuildTransfer(wallet.PublicKey(), solana.NewWallet().PublicKey(), 1_000)

	_, err := client.SignAndBroadcast(context.Background(), ix, signer, solana.Hash{})
	if err == nil {
		t.Fatal("SignAndBroadcast succeeded, want timeout error")
	}
	if !strings.Contains(err.Error(), "not finalized") {
		t.Errorf("error = %q, want confirmation timeout", err)
	}
}
