package registry

// ArtAuctionABI is the method surface the client relies on. It is used when a
// deployment artifact carries no ABI of its own.
const ArtAuctionABI = `[
  {
    "inputs": [],
    "name": "getActiveAuctions",
    "outputs": [
      {
        "components": [
          {"internalType": "uint256", "name": "id", "type": "uint256"},
          {"internalType": "string", "name": "artName", "type": "string"},
          {"internalType": "uint256", "name": "minBid", "type": "uint256"}
        ],
        "internalType": "struct ArtAuction.Auction[]",
        "name": "",
        "type": "tuple[]"
      }
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "auctionId", "type": "uint256"}],
    "name": "placeBid",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  }
]`

// Method names of the contract surface.
const (
	MethodGetActiveAuctions = "getActiveAuctions"
	MethodPlaceBid          = "placeBid"
)
