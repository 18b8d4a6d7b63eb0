// Package registry loads the deployment record produced by the contract
// deployment process: the contract ABI plus one address per network id.
package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/vietddude/artbid/internal/core/domain"
)

// Deployment is the contract record for one network.
type Deployment struct {
	NetworkID domain.NetworkID
	Address   common.Address
	ABI       abi.ABI
}

// Registry maps network ids to deployments. It is read-only after loading.
type Registry struct {
	contractName string
	deployments  map[domain.NetworkID]Deployment
}

// artifact is the subset of a truffle build artifact the client reads.
type artifact struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Networks     map[string]struct {
		Address string `json:"address"`
	} `json:"networks"`
}

// Load reads a deployment artifact from disk.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return Parse(data)
}

// Parse decodes a deployment artifact.
func Parse(data []byte) (*Registry, error) {
	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("failed to parse artifact: %w", err)
	}

	rawABI := []byte(ArtAuctionABI)
	if trimmed := bytes.TrimSpace(art.ABI); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		rawABI = trimmed
	}
	contractABI, err := parseABI(rawABI)
	if err != nil {
		return nil, err
	}

	addresses := make(map[domain.NetworkID]common.Address, len(art.Networks))
	for key, rec := range art.Networks {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid network id %q: %w", key, err)
		}
		if !common.IsHexAddress(rec.Address) {
			return nil, fmt.Errorf("invalid address %q for network %s", rec.Address, key)
		}
		addresses[domain.NetworkID(id)] = common.HexToAddress(rec.Address)
	}

	r := New(contractABI, addresses)
	r.contractName = art.ContractName
	return r, nil
}

// New builds a registry from an ABI and per-network addresses.
func New(contractABI abi.ABI, addresses map[domain.NetworkID]common.Address) *Registry {
	r := &Registry{
		contractName: "ArtAuction",
		deployments:  make(map[domain.NetworkID]Deployment, len(addresses)),
	}
	for id, addr := range addresses {
		r.deployments[id] = Deployment{NetworkID: id, Address: addr, ABI: contractABI}
	}
	return r
}

// DefaultABI returns the parsed built-in method surface.
func DefaultABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(ArtAuctionABI))
	if err != nil {
		panic(fmt.Sprintf("registry: built-in ABI is invalid: %v", err))
	}
	return parsed
}

// Lookup returns the deployment for a network.
func (r *Registry) Lookup(id domain.NetworkID) (Deployment, bool) {
	if r == nil {
		return Deployment{}, false
	}
	d, ok := r.deployments[id]
	return d, ok
}

// Networks lists the network ids with a deployment, ascending.
func (r *Registry) Networks() []domain.NetworkID {
	ids := make([]domain.NetworkID, 0, len(r.deployments))
	for id := range r.deployments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ContractName returns the artifact's contract name.
func (r *Registry) ContractName() string {
	return r.contractName
}

func parseABI(raw []byte) (abi.ABI, error) {
	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to parse contract abi: %w", err)
	}
	for _, name := range []string{MethodGetActiveAuctions, MethodPlaceBid} {
		if _, ok := parsed.Methods[name]; !ok {
			return abi.ABI{}, fmt.Errorf("contract abi is missing method %s", name)
		}
	}
	return parsed, nil
}
