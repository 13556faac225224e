package chains

import "testing"

func TestRegistryLookup(t *testing.T) {
	chain, ok := GlobalRegistry.GetByID(1)
	if !ok {
		t.Fatal("mainnet should be registered")
	}
	if chain != Mainnet {
		t.Error("Mainnet should be the chain registered under id 1")
	}
	if chain.Symbol != "ETH" || chain.Decimals != 18 {
		t.Errorf("unexpected mainnet definition: %+v", chain)
	}

	polygon, ok := GlobalRegistry.GetByID(137)
	if !ok || polygon.Symbol != "POL" {
		t.Errorf("unexpected polygon definition: %+v", polygon)
	}

	if _, ok := GlobalRegistry.GetByID(999999); ok {
		t.Error("unknown chain id reported as registered")
	}
}

func TestExplorerURLs(t *testing.T) {
	if got := Mainnet.TxURL("0xabc"); got != "https://etherscan.io/tx/0xabc" {
		t.Errorf("TxURL = %s", got)
	}

	if got := Mainnet.AddressURL("0xdef"); got != "https://etherscan.io/address/0xdef" {
		t.Errorf("AddressURL = %s", got)
	}
}
