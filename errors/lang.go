package errors

// LangErrorCode mirrors the error codes reserved by the Anchor framework
// itself. Program-specific errors defined in an IDL start above these
// ranges; anything below is raised by the framework's generated checks
// (deserialization, constraint validation, account validation).
type LangErrorCode = int

// Instruction errors.
const (
	LangInstructionMissing LangErrorCode = 100 + iota
	LangInstructionFallbackNotFound
	LangInstructionDidNotDeserialize
	LangInstructionDidNotSerialize
)

// IDL instruction errors.
const (
	LangIdlInstructionStub LangErrorCode = 1000 + iota
	LangIdlInstructionInvalidProgram
)

// Constraint errors.
const (
	LangConstraintMut LangErrorCode = 2000 + iota
	LangConstraintHasOne
	LangConstraintSigner
	LangConstraintRaw
	LangConstraintOwner
	LangConstraintRentExempt
	LangConstraintSeeds
	LangConstraintExecutable
	LangConstraintState
	LangConstraintAssociated
	LangConstraintAssociatedInit
	LangConstraintAssociatedOwner
	LangConstraintAssociatedSpace
	LangConstraintAssociatedTokenMint
	LangConstraintAssociatedTokenOwner
	LangConstraintMintMintAuthority
	LangConstraintMintFreezeAuthority
	LangConstraintMintDecimals
	LangConstraintSpace
)

// Account errors.
const (
	LangAccountDiscriminatorAlreadySet LangErrorCode = 3000 + iota
	LangAccountDiscriminatorNotFound
	LangAccountDiscriminatorMismatch
	LangAccountDidNotDeserialize
	LangAccountDidNotSerialize
	LangAccountNotEnoughKeys
	LangAccountNotMutable
	LangAccountNotProgramOwned
	LangInvalidProgramId
	LangInvalidProgramExecutable
	LangAccountNotSigner
	LangAccountNotSystemOwned
	LangAccountNotInitialized
	LangAccountNotProgramData
)

// langErrorMessages maps framework error codes to their messages, matching
// the table emitted by the Anchor runtime.
var langErrorMessages = map[int]string{
	LangInstructionMissing:             "8 byte instruction identifier not provided",
	LangInstructionFallbackNotFound:    "Fallback functions are not supported",
	LangInstructionDidNotDeserialize:   "The program could not deserialize the given instruction",
	LangInstructionDidNotSerialize:     "The program could not serialize the given instruction",
	LangIdlInstructionStub:             "The program was compiled without idl instructions",
	LangIdlInstructionInvalidProgram:   "Invalid program given to the IDL instruction",
	LangConstraintMut:                  "A mut constraint was violated",
	LangConstraintHasOne:               "A has_one constraint was violated",
	LangConstraintSigner:               "A signer constraint was violated",
	LangConstraintRaw:                  "A raw constraint was violated",
	LangConstraintOwner:                "An owner constraint was violated",
	LangConstraintRentExempt:           "A rent exempt constraint was violated",
	LangConstraintSeeds:                "A seeds constraint was violated",
	LangConstraintExecutable:           "An executable constraint was violated",
	LangConstraintState:                "A state constraint was violated",
	LangConstraintAssociated:           "An associated constraint was violated",
	LangConstraintAssociatedInit:       "An associated init constraint was violated",
	LangConstraintAssociatedOwner:      "An associated owner constraint was violated",
	LangConstraintAssociatedSpace:      "An associated space constraint was violated",
	LangConstraintAssociatedTokenMint:  "An associated token mint constraint was violated",
	LangConstraintAssociatedTokenOwner: "An associated token owner constraint was violated",
	LangConstraintMintMintAuthority:    "A mint mint authority constraint was violated",
	LangConstraintMintFreezeAuthority:  "A mint freeze authority constraint was violated",
	LangConstraintMintDecimals:         "A mint decimals constraint was violated",
	LangConstraintSpace:                "A space constraint was violated",
	LangAccountDiscriminatorAlreadySet: "The account discriminator was already set on this account",
	LangAccountDiscriminatorNotFound:   "No 8 byte discriminator was found on the account",
	LangAccountDiscriminatorMismatch:   "8 byte discriminator did not match what was expected",
	LangAccountDidNotDeserialize:       "Failed to deserialize the account",
	LangAccountDidNotSerialize:         "Failed to serialize the account",
	LangAccountNotEnoughKeys:           "Not enough account keys given to the instruction",
	LangAccountNotMutable:              "The given account is not mutable",
	LangAccountNotProgramOwned:         "The given account is not owned by the executing program",
	LangInvalidProgramId:               "Program ID was not as expected",
	LangInvalidProgramExecutable:       "Program account is not executable",
	LangAccountNotSigner:               "The given account did not sign",
	LangAccountNotSystemOwned:          "The given account is not owned by the system program",
	LangAccountNotInitialized:          "The program expected this account to be already initialized",
	LangAccountNotProgramData:          "The given account is not a program data account",
}

// LangErrorMessage returns the framework message for a reserved error code.
func LangErrorMessage(code int) (string, bool) {
	msg, ok := langErrorMessages[code]
	return msg, ok
}
