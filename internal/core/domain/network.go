package domain

import "fmt"

// NetworkID identifies the chain the wallet provider is currently on.
type NetworkID uint64

type NetworkName string

const (
	NetworkIDMainnet NetworkID = 1
	NetworkIDGoerli  NetworkID = 5
	NetworkIDSepolia NetworkID = 11155111
	NetworkIDLocal   NetworkID = 1337
	NetworkIDGanache NetworkID = 5777

	NetworkNameMainnet NetworkName = "MAINNET"
	NetworkNameGoerli  NetworkName = "GOERLI"
	NetworkNameSepolia NetworkName = "SEPOLIA"
	NetworkNameLocal   NetworkName = "LOCAL"
	NetworkNameGanache NetworkName = "GANACHE"
)

// NetworkIDToName maps well-known network ids to a readable name.
var NetworkIDToName = map[NetworkID]NetworkName{
	NetworkIDMainnet: NetworkNameMainnet,
	NetworkIDGoerli:  NetworkNameGoerli,
	NetworkIDSepolia: NetworkNameSepolia,
	NetworkIDLocal:   NetworkNameLocal,
	NetworkIDGanache: NetworkNameGanache,
}

// String renders the id with its name when known, e.g. "5 (GOERLI)".
func (n NetworkID) String() string {
	if name, ok := NetworkIDToName[n]; ok {
		return fmt.Sprintf("%d (%s)", uint64(n), name)
	}
	return fmt.Sprintf("%d", uint64(n))
}
