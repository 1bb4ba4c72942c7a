package constants

import "github.com/gagliardetto/solana-go"

// ProgramID is the launch engine's program identity, used to derive curve
// custody addresses. Matches the reference deployment.
var ProgramID = solana.MustPublicKeyFromBase58("FYnpDiZVejAbvnme7WZrxUE2T5K4Fv4MwDsZQ2JLzMYm")
