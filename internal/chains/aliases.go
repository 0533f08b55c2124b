package chains

// defaultAliases maps stripped upper-case chain tokens onto canonical tokens.
// Covers the spellings Bithumb and GateIO currently report; unknown tokens
// fall through unchanged, so missing entries degrade to literal matching.
var defaultAliases = map[string]string{
	"APTOS":              "APT",
	"APT":                "APT",
	"ASTAR":              "ASTR",
	"ALGORAND":           "ALGO",
	"ALLORA":             "ALLO",
	"AELF":               "ELF",
	"AVAILDA":            "AVAIL",
	"ARBITRUM":           "ARBONE",
	"ARBITRUMONE":        "ARBONE",
	"ARBONE":             "ARBONE",
	"ARB":                "ARBONE",
	"ARBITRUMNOVA":       "ARBNOVA",
	"ARBNOVA":            "ARBNOVA",
	"ARWEAVE":            "AR",
	"AVALANCHECCHAIN":    "AVAXC",
	"AVALANCHEC":         "AVAXC",
	"AVAXC":              "AVAXC",
	"AVALANCHE":          "AVAXC",
	"BABYLON":            "BABY",
	"CELESTIA":           "TIA",
	"BASE":               "BASE",
	"BERACHAIN":          "BERA",
	"BINANCESMARTCHAIN":  "BEP20",
	"BNBSMARTCHAIN":      "BEP20",
	"BNBSMARTCHAINBEP20": "BEP20",
	"BOUNCEBIT":          "BB",
	"BSC":                "BEP20",
	"BEP20":              "BEP20",
	"BITCOIN":            "BTC",
	"BITCOINCASH":        "BCH",
	"BITCOINSV":          "BSV",
	"BITTENSOR":          "TAO",
	"BTC":                "BTC",
	"CSPR":               "CSPR",
	"CASPER":             "CSPR",
	"CARDANO":            "ADA",
	"CELOL2":             "CELO",
	"CFXESPACE":          "CFXEVM",
	"CHILIZCHAIN":        "CHZ2",
	"CHILIZ":             "CHZ2",
	"COREDAO":            "CORE",
	"COSMOS":             "ATOM",
	"CRONOS":             "CRO",
	"DOGECOIN":           "DOGE",
	"DYDXCHAIN":          "DYDX",
	"DECRED":             "DCR",
	"ECASH":              "XEC",
	"ECLIPSE":            "ES",
	"ENJIN":              "ENJ",
	"ERC20":              "ERC20",
	"ETH":                "ERC20",
	"ETHEREUM":           "ERC20",
	"ETHEREUMCLASSIC":    "ETC",
	"ETHEREUMPOW":        "ETHW",
	"FANTOM":             "FTM",
	"FILECOIN":           "FIL",
	"FLARE":              "FLR",
	"G":                  "G",
	"GRAVITY":            "G",
	"HEDERA":             "HBAR",
	"HIPPOPROTOCOL":      "HP",
	"HORIZEN":            "ZEN",
	"ICON":               "ICX",
	"INTERNETCOMPUTER":   "ICP",
	"INJECTIVE":          "INJ",
	"INITIA":             "INIT",
	"IOTEX":              "IOTX",
	"KAIA":               "KAIA",
	"KLAYTN":             "KAIA",
	"KLAY":               "KAIA",
	"KASPA":              "KAS",
	"LITECOIN":           "LTC",
	"MANTRA":             "OM",
	"MANTLE":             "MNT",
	"LUNA":               "LUNA",
	"TERRA":              "LUNA",
	"MATIC":              "MATIC",
	"MEDIBLOC":           "MED",
	"METALL2":            "MTLETH",
	"MONAD":              "MON",
	"MERLINCHAIN":        "MERLBTC",
	"MULTIVERSEX":        "EGLD",
	"ELROND":             "EGLD",
	"NEARPROTOCOL":       "NEAR",
	"NEON3":              "GAS",
	"NEON3N3":            "GAS",
	"NERVOSNETWORK":      "CKB",
	"NERVOS":             "CKB",
	"NILLION":            "NIL",
	"OASYS":              "OAS",
	"OASIS":              "ROSE",
	"OASISNETWORK":       "ROSE",
	"OPTIMISM":           "OP",
	"OP":                 "OP",
	"ONTOLOGY":           "ONG",
	"OSMOSIS":            "OSMO",
	"PLASMA":             "XPL",
	"POCKETNETWORK":      "POKT",
	"POLYGON":            "MATIC",
	"POLYGONPOS":         "MATIC",
	"POLYMESH":           "POLYX",
	"POLKADOT":           "DOT",
	"PROTON":             "XPR",
	"QUARKCHAIN":         "QKC",
	"RAVEN":              "RVN",
	"RAVENCOIN":          "RVN",
	"REINETWORK":         "REI",
	"RIPPLE":             "XRP",
	"RON":                "RON",
	"RONIN":              "RON",
	"SIACOIN":            "SC",
	"SEINETWORK":         "SEI",
	"SHENTU":             "CTK",
	"S":                  "S",
	"SONIC":              "S",
	"SONGBIRD":           "SGB",
	"SOLAR":              "SXP",
	"SOL":                "SOL",
	"SOLANA":             "SOL",
	"SOMNIA":             "SOMI",
	"SOPHON":             "SOPH",
	"STELLAR":            "XLM",
	"STORY":              "IP",
	"STRATIS":            "STRAX",
	"STRKETH":            "STRKETH",
	"STARKNET":           "STRKETH",
	"STACKS":             "STX",
	"SWELLCHAIN":         "SWELL",
	"TRC20":              "TRC20",
	"TRON":               "TRC20",
	"TRX":                "TRC20",
	"TEZOS":              "XTZ",
	"THUNDERCORE":        "TT",
	"THETA":              "THETA",
	"THETANETWORK":       "THETA",
	"TONCOIN":            "TON",
	"VAULTA":             "A",
	"VECHAIN":            "VET",
	"WAX":                "WAXP",
	"WORLDCHAIN":         "WLD",
	"ZCASH":              "ZEC",
	"ZETA":               "ZETA",
	"ZETACHAIN":          "ZETA",
	"ZKSERA":             "ZKSERA",
	"ZKSYNCERA":          "ZKSERA",
	"ZKSYNC":             "ZKSERA",
	"ZILLIQA":            "ZIL",
	"ZIRCUIT":            "ZRC",
}
