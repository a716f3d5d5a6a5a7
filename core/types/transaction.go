package types

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"loyaltyledger/crypto"
)

// TxType defines the operation a transaction invokes.
type TxType byte

const (
	TxTypeInitMerchant          TxType = 0x01
	TxTypeInitRewardPoints      TxType = 0x02
	TxTypeTransaction           TxType = 0x03 // customer pays merchant, earns points
	TxTypeCreateCollectionNFT   TxType = 0x04
	TxTypeCreateNFTInCollection TxType = 0x05
	TxTypeUpdateRewardPoints    TxType = 0x06
	TxTypeUpdateLoyaltyPoints   TxType = 0x07
	TxTypeMintRewardPoints      TxType = 0x08
)

var txTypeNames = map[TxType]string{
	TxTypeInitMerchant:          "initMerchant",
	TxTypeInitRewardPoints:      "initRewardPoints",
	TxTypeTransaction:           "transaction",
	TxTypeCreateCollectionNFT:   "createCollectionNft",
	TxTypeCreateNFTInCollection: "createNftInCollection",
	TxTypeUpdateRewardPoints:    "updateRewardPoints",
	TxTypeUpdateLoyaltyPoints:   "updateLoyaltyPoints",
	TxTypeMintRewardPoints:      "mintRewardPoints",
}

// String returns the operation name.
func (t TxType) String() string {
	if name, ok := txTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(0x%02x)", byte(t))
}

// Valid reports whether the type names a known operation.
func (t TxType) Valid() bool {
	_, ok := txTypeNames[t]
	return ok
}

var (
	ErrMissingSignature = errors.New("tx: missing signature")
	ErrUnknownTxType    = errors.New("tx: unknown transaction type")
)

// Transaction is a signed request to run one operation. The signer is the
// operation's caller.
type Transaction struct {
	ChainID   uint64          `json:"chainId"`
	Type      TxType          `json:"type"`
	Nonce     uint64          `json:"nonce"`
	Params    json.RawMessage `json:"params,omitempty"`
	Signature hexutil.Bytes   `json:"signature"`

	from *crypto.Address
}

// NewTransaction marshals params into an unsigned transaction.
func NewTransaction(chainID uint64, txType TxType, nonce uint64, params interface{}) (*Transaction, error) {
	if !txType.Valid() {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownTxType, byte(txType))
	}
	tx := &Transaction{ChainID: chainID, Type: txType, Nonce: nonce}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		tx.Params = raw
	}
	return tx, nil
}

// Hash commits to every field except the signature.
func (tx *Transaction) Hash() ([]byte, error) {
	payload := struct {
		ChainID uint64
		Type    uint8
		Nonce   uint64
		Params  []byte
	}{tx.ChainID, uint8(tx.Type), tx.Nonce, []byte(tx.Params)}
	encoded, err := rlp.EncodeToBytes(payload)
	if err != nil {
		return nil, err
	}
	return ethcrypto.Keccak256(encoded), nil
}

// Sign attaches a recoverable signature from the caller's key.
func (tx *Transaction) Sign(key *crypto.PrivateKey) error {
	hash, err := tx.Hash()
	if err != nil {
		return err
	}
	sig, err := key.Sign(hash)
	if err != nil {
		return err
	}
	tx.Signature = sig
	tx.from = nil
	return nil
}

// From recovers the identity that signed the transaction.
func (tx *Transaction) From() (crypto.Address, error) {
	if tx.from != nil {
		return *tx.from, nil
	}
	if len(tx.Signature) == 0 {
		return crypto.Address{}, ErrMissingSignature
	}
	hash, err := tx.Hash()
	if err != nil {
		return crypto.Address{}, err
	}
	addr, err := crypto.RecoverAddress(hash, tx.Signature)
	if err != nil {
		return crypto.Address{}, fmt.Errorf("tx: recover signer: %w", err)
	}
	tx.from = &addr
	return addr, nil
}

// DecodeParams unmarshals the operation parameters.
func (tx *Transaction) DecodeParams(out interface{}) error {
	if len(tx.Params) == 0 {
		return fmt.Errorf("tx: %s requires params", tx.Type)
	}
	if err := json.Unmarshal(tx.Params, out); err != nil {
		return fmt.Errorf("tx: decode %s params: %w", tx.Type, err)
	}
	return nil
}
