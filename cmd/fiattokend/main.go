// fiattokend serves the gasless-authorization token engine over HTTP.
//
// Configuration comes from the environment (a .env file is loaded when
// present):
//
//	FIATTOKEN_NAME              token name used in the signing domain (default "USD Token")
//	FIATTOKEN_VERSION           signing domain version (default "1")
//	FIATTOKEN_SYMBOL            token symbol (default "USDT0")
//	FIATTOKEN_CHAIN_ID          chain id the domain binds to (default 1)
//	FIATTOKEN_CONTRACT_ADDRESS  verifying contract address for the domain
//	FIATTOKEN_LISTEN_ADDR       HTTP listen address (default ":8402")
//	FIATTOKEN_GENESIS_FILE      JSON file mapping address -> balance (decimal string)
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/gaslesspay/fiattoken/eip712"
	"github.com/gaslesspay/fiattoken/httpapi"
	"github.com/gaslesspay/fiattoken/token"
)

func main() {
	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	domain := eip712.Domain{
		Name:              envOr("FIATTOKEN_NAME", "USD Token"),
		Version:           envOr("FIATTOKEN_VERSION", "1"),
		ChainID:           big.NewInt(1),
		VerifyingContract: common.HexToAddress(envOr("FIATTOKEN_CONTRACT_ADDRESS", "0x0000000000000000000000000000000000000000")),
	}
	if raw := os.Getenv("FIATTOKEN_CHAIN_ID"); raw != "" {
		chainID, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			log.Fatalf("invalid FIATTOKEN_CHAIN_ID: %s", raw)
		}
		domain.ChainID = chainID
	}

	genesis := map[common.Address]*big.Int{}
	if path := os.Getenv("FIATTOKEN_GENESIS_FILE"); path != "" {
		var err error
		genesis, err = loadGenesis(path)
		if err != nil {
			log.Fatalf("failed to load genesis file: %v", err)
		}
	}

	t := token.New(domain, genesis, token.WithSymbol(envOr("FIATTOKEN_SYMBOL", "USDT0")))
	server := httpapi.NewServer(t)

	addr := envOr("FIATTOKEN_LISTEN_ADDR", ":8402")
	log.Printf("fiattokend listening on %s (token %q version %q chain %s)",
		addr, domain.Name, domain.Version, domain.ChainID)
	if err := server.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func loadGenesis(path string) (map[common.Address]*big.Int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries map[string]string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("invalid genesis JSON: %w", err)
	}

	genesis := make(map[common.Address]*big.Int, len(entries))
	for addrHex, amountStr := range entries {
		if !common.IsHexAddress(addrHex) {
			return nil, fmt.Errorf("invalid genesis address: %s", addrHex)
		}
		amount, ok := new(big.Int).SetString(amountStr, 10)
		if !ok || amount.Sign() < 0 {
			return nil, fmt.Errorf("invalid genesis amount for %s: %s", addrHex, amountStr)
		}
		genesis[common.HexToAddress(addrHex)] = amount
	}
	return genesis, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
