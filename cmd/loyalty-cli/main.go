package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"loyaltyledger/core/types"
	"loyaltyledger/crypto"
)

var rpcEndpoint = defaultRPCEndpoint() // overridden via RPC_URL or --rpc

func main() {
	args, err := applyGlobalFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(args) < 1 {
		printUsage()
		return
	}
	if err := run(newRPCClient(rpcEndpoint), args[0], args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(client *rpcClient, command string, args []string) error {
	switch command {
	case "generate-key":
		path := "wallet.key"
		if len(args) > 0 {
			path = args[0]
		}
		return generateKey(path)
	case "address":
		if err := need(args, 1, "address <key-file>"); err != nil {
			return err
		}
		key, err := loadPrivateKey(args[0])
		if err != nil {
			return err
		}
		fmt.Println(key.Address().String())
		return nil
	case "head":
		return query(client, "loyalty_getHead", nil)
	case "nonce":
		if err := need(args, 1, "nonce <address>"); err != nil {
			return err
		}
		return query(client, "loyalty_getNonce", map[string]string{"address": args[0]})
	case "merchant":
		if err := need(args, 1, "merchant <address>"); err != nil {
			return err
		}
		return query(client, "loyalty_getMerchant", map[string]string{"address": args[0]})
	case "metadata":
		if err := need(args, 1, "metadata <asset>"); err != nil {
			return err
		}
		return query(client, "loyalty_getMetadata", map[string]string{"address": args[0]})
	case "receipt":
		if err := need(args, 1, "receipt <tx-hash>"); err != nil {
			return err
		}
		return query(client, "loyalty_getReceipt", map[string]string{"hash": args[0]})
	case "balance":
		if err := need(args, 1, "balance <owner> [asset]"); err != nil {
			return err
		}
		param := map[string]string{"owner": args[0]}
		if len(args) > 1 {
			param["asset"] = args[1]
		}
		return query(client, "loyalty_getBalance", param)
	case "derive":
		if err := need(args, 1, "derive <authority> [customer]"); err != nil {
			return err
		}
		param := map[string]string{"authority": args[0]}
		if len(args) > 1 {
			param["customer"] = args[1]
		}
		return query(client, "loyalty_deriveAddresses", param)
	default:
		return runWrite(client, command, args)
	}
}

func runWrite(client *rpcClient, command string, args []string) error {
	switch command {
	case "init-merchant":
		if err := need(args, 1, "init-merchant <key-file>"); err != nil {
			return err
		}
		return submit(client, args[0], types.TxTypeInitMerchant, nil)
	case "init-reward-points":
		if err := need(args, 6, "init-reward-points <key-file> <merchant> <basis-points> <name> <symbol> <uri>"); err != nil {
			return err
		}
		merchant, bps, err := merchantAndBasisPoints(args[1], args[2])
		if err != nil {
			return err
		}
		return submit(client, args[0], types.TxTypeInitRewardPoints, types.InitRewardPointsParams{
			Merchant: merchant, BasisPoints: bps, Name: args[3], Symbol: args[4], URI: args[5],
		})
	case "pay":
		if err := need(args, 3, "pay <key-file> <merchant> <amount>"); err != nil {
			return err
		}
		merchant, err := crypto.DecodeAddress(args[1])
		if err != nil {
			return fmt.Errorf("invalid merchant: %w", err)
		}
		amount, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		return submit(client, args[0], types.TxTypeTransaction, types.TransactionParams{Merchant: merchant, Amount: amount})
	case "create-collection":
		if err := need(args, 6, "create-collection <key-file> <merchant> <discount-basis-points> <name> <symbol> <uri>"); err != nil {
			return err
		}
		merchant, bps, err := merchantAndBasisPoints(args[1], args[2])
		if err != nil {
			return err
		}
		return submit(client, args[0], types.TxTypeCreateCollectionNFT, types.CreateCollectionParams{
			Merchant: merchant, LoyaltyDiscountBasisPoints: bps, Name: args[3], Symbol: args[4], URI: args[5],
		})
	case "create-badge":
		if err := need(args, 5, "create-badge <key-file> <merchant> <name> <symbol> <uri>"); err != nil {
			return err
		}
		key, err := loadPrivateKey(args[0])
		if err != nil {
			return err
		}
		merchant, err := crypto.DecodeAddress(args[1])
		if err != nil {
			return fmt.Errorf("invalid merchant: %w", err)
		}
		return submitWithKey(client, key, types.TxTypeCreateNFTInCollection, types.CreateItemParams{
			Merchant: merchant, Customer: key.Address(), Name: args[2], Symbol: args[3], URI: args[4],
		})
	case "update-reward-points", "update-loyalty-points":
		if err := need(args, 3, command+" <key-file> <merchant> <basis-points>"); err != nil {
			return err
		}
		merchant, bps, err := merchantAndBasisPoints(args[1], args[2])
		if err != nil {
			return err
		}
		txType := types.TxTypeUpdateRewardPoints
		if command == "update-loyalty-points" {
			txType = types.TxTypeUpdateLoyaltyPoints
		}
		return submit(client, args[0], txType, types.UpdateBasisPointsParams{Merchant: merchant, BasisPoints: bps})
	case "mint-reward-points":
		if err := need(args, 4, "mint-reward-points <key-file> <merchant> <customer> <amount>"); err != nil {
			return err
		}
		merchant, err := crypto.DecodeAddress(args[1])
		if err != nil {
			return fmt.Errorf("invalid merchant: %w", err)
		}
		customer, err := crypto.DecodeAddress(args[2])
		if err != nil {
			return fmt.Errorf("invalid customer: %w", err)
		}
		amount, err := strconv.ParseUint(args[3], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		return submit(client, args[0], types.TxTypeMintRewardPoints, types.MintRewardPointsParams{
			Merchant: merchant, Customer: customer, Amount: amount,
		})
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func need(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("usage: loyalty-cli %s", usage)
	}
	return nil
}

func merchantAndBasisPoints(rawMerchant, rawBps string) (crypto.Address, uint16, error) {
	merchant, err := crypto.DecodeAddress(rawMerchant)
	if err != nil {
		return crypto.Address{}, 0, fmt.Errorf("invalid merchant: %w", err)
	}
	bps, err := strconv.ParseUint(rawBps, 10, 16)
	if err != nil {
		return crypto.Address{}, 0, fmt.Errorf("invalid basis points: %w", err)
	}
	return merchant, uint16(bps), nil
}

func query(client *rpcClient, method string, param interface{}) error {
	result, err := client.call(method, param, false)
	if err != nil {
		return err
	}
	printJSONResult(result)
	return nil
}

func submit(client *rpcClient, keyFile string, txType types.TxType, params interface{}) error {
	key, err := loadPrivateKey(keyFile)
	if err != nil {
		return err
	}
	return submitWithKey(client, key, txType, params)
}

// submitWithKey looks up the chain id and the signer's next nonce, signs the
// transaction and sends it.
func submitWithKey(client *rpcClient, key *crypto.PrivateKey, txType types.TxType, params interface{}) error {
	headRaw, err := client.call("loyalty_getHead", nil, false)
	if err != nil {
		return err
	}
	var head struct {
		ChainID uint64 `json:"chainId"`
	}
	if err := json.Unmarshal(headRaw, &head); err != nil {
		return fmt.Errorf("decode head: %w", err)
	}
	nonceRaw, err := client.call("loyalty_getNonce", map[string]string{"address": key.Address().String()}, false)
	if err != nil {
		return err
	}
	var nonce struct {
		Nonce uint64 `json:"nonce"`
	}
	if err := json.Unmarshal(nonceRaw, &nonce); err != nil {
		return fmt.Errorf("decode nonce: %w", err)
	}

	tx, err := types.NewTransaction(head.ChainID, txType, nonce.Nonce, params)
	if err != nil {
		return err
	}
	if err := tx.Sign(key); err != nil {
		return fmt.Errorf("sign transaction: %w", err)
	}
	result, err := client.call("loyalty_sendTransaction", tx, true)
	if err != nil {
		return err
	}
	printJSONResult(result)
	return nil
}

func generateKey(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists; refusing to overwrite", path)
	}
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(hex.EncodeToString(key.Bytes())+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to save key to %s: %w", path, err)
	}
	fmt.Printf("Generated new key and saved to %s\n", path)
	fmt.Printf("Your address is: %s\n", key.Address().String())
	return nil
}

// loadPrivateKey accepts hex encoded keys, as written by generate-key and by
// loyaltyd's default configuration, as well as raw 32 byte key files.
func loadPrivateKey(path string) (*crypto.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("private key file %s not found. run loyalty-cli generate-key first", path)
		}
		return nil, fmt.Errorf("failed to read private key file %s: %w", path, err)
	}
	trimmed := strings.TrimPrefix(strings.TrimSpace(string(raw)), "0x")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("private key file %s is empty", path)
	}
	keyBytes := raw
	if decoded, err := hex.DecodeString(trimmed); err == nil {
		keyBytes = decoded
	}
	key, err := crypto.PrivateKeyFromBytes(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key in %s: %w", path, err)
	}
	return key, nil
}

func applyGlobalFlags(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--rpc" {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("missing value for --rpc")
			}
			rpcEndpoint = args[i+1]
			i++
			continue
		}
		if strings.HasPrefix(arg, "--rpc=") {
			rpcEndpoint = strings.TrimPrefix(arg, "--rpc=")
			continue
		}
		out = append(out, arg)
	}
	return out, nil
}

// printJSONResult indents results for terminals and prints them compactly
// when piped.
func printJSONResult(result json.RawMessage) {
	if len(result) == 0 {
		fmt.Println("No result.")
		return
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Println(string(result))
		return
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, result, "", "  "); err != nil {
		fmt.Println(string(result))
		return
	}
	fmt.Println(buf.String())
}

func printUsage() {
	fmt.Println("Usage: loyalty-cli [--rpc URL] <command> [arguments]")
	fmt.Println()
	fmt.Println("Keys:")
	fmt.Println("  generate-key [file]                                   Create a key file (default wallet.key)")
	fmt.Println("  address <key-file>                                    Print the identity address of a key")
	fmt.Println()
	fmt.Println("Queries:")
	fmt.Println("  head                                                  Chain id, payment asset and state root")
	fmt.Println("  nonce <address>                                       Next transaction nonce")
	fmt.Println("  merchant <address>                                    Merchant record")
	fmt.Println("  metadata <asset>                                      Asset metadata")
	fmt.Println("  balance <owner> [asset]                               Holding balance (payment asset by default)")
	fmt.Println("  derive <authority> [customer]                         Derived merchant addresses")
	fmt.Println("  receipt <tx-hash>                                     Stored transaction receipt")
	fmt.Println()
	fmt.Println("Transactions (set LOYALTY_RPC_TOKEN or enter it when prompted):")
	fmt.Println("  init-merchant <key-file>")
	fmt.Println("  init-reward-points <key-file> <merchant> <bps> <name> <symbol> <uri>")
	fmt.Println("  pay <key-file> <merchant> <amount>")
	fmt.Println("  create-collection <key-file> <merchant> <bps> <name> <symbol> <uri>")
	fmt.Println("  create-badge <key-file> <merchant> <name> <symbol> <uri>")
	fmt.Println("  update-reward-points <key-file> <merchant> <bps>")
	fmt.Println("  update-loyalty-points <key-file> <merchant> <bps>")
	fmt.Println("  mint-reward-points <key-file> <merchant> <customer> <amount>")
}
