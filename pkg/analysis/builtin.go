package analysis

// Builtin returns a registry holding every built-in analysis.
func Builtin() *Registry {
	r := NewRegistry()
	r.MustRegister(Definition{
		Name:        "transitive",
		Description: "transitive transactions in the Circles hub",
		Run:         runTransitive,
	})
	r.MustRegister(Definition{
		Name:        "timetransfers",
		Description: "regular transfer transactions including ubi payouts and gas fees with timestamp",
		Run:         runTimeTransfers,
	})
	r.MustRegister(Definition{
		Name:        "transfers",
		Description: "regular transfer transactions including ubi payouts and gas fees",
		Run:         runTransfers,
	})
	r.MustRegister(Definition{
		Name:        "trusts",
		Description: "trust connection events",
		Run:         runTrusts,
	})
	r.MustRegister(Definition{
		Name:        "ownerships",
		Description: "safe ownership events / device changes",
		Run:         runOwnerships,
	})
	r.MustRegister(Definition{
		Name:        "safes",
		Description: "safe deployments and balances",
		Run:         runSafes,
	})
	r.MustRegister(Definition{
		Name:        "walletDeployedSafes",
		Description: "safe deployments that are shared wallets",
		Run:         deployedSafes(true, "Deployed Safes that are Shared Wallets"),
	})
	r.MustRegister(Definition{
		Name:        "userDeployedSafes",
		Description: "safe deployments that are not shared wallets",
		Run:         deployedSafes(false, "Deployed Safes that are Individual accounts"),
	})
	r.MustRegister(Definition{
		Name:        "velocity",
		Description: "transfer velocity",
		Run:         runVelocity,
	})
	return r
}

func (e *Env) summarize(res *Result) *summarizer {
	return &summarizer{result: res, logger: e.Logger}
}
