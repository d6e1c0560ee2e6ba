package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchorgo/sdk-go/coder"
	"github.com/anchorgo/sdk-go/idl"
)

const genIDL = `{
  "version": "0.1.0",
  "name": "counter",
  "instructions": [
    {
      "name": "initialize",
      "accounts": [
        {"name": "counter", "isMut": true, "isSigner": true},
        {"name": "authority", "isMut": false, "isSigner": true}
      ],
      "args": [
        {"name": "start", "type": "u64"},
        {"name": "memo", "type": {"option": "string"}}
      ]
    },
    {
      "name": "increment",
      "accounts": [
        {"name": "counter", "isMut": true, "isSigner": false},
        {"name": "authority", "isMut": false, "isSigner": true},
        {"name": "referrer", "isMut": false, "isSigner": false, "isOptional": true}
      ],
      "args": []
    }
  ],
  "accounts": [
    {
      "name": "Counter",
      "type": {
        "kind": "struct",
        "fields": [
          {"name": "authority", "type": "publicKey"},
          {"name": "count", "type": "u64"},
          {"name": "tags", "type": {"vec": "string"}}
        ]
      }
    }
  ],
  "types": [
    {
      "name": "Mode",
      "type": {"kind": "enum", "variants": [{"name": "Auto"}, {"name": "Manual"}]}
    },
    {
      "name": "Adjustment",
      "type": {
        "kind": "enum",
        "variants": [
          {"name": "Reset"},
          {"name": "Delta", "fields": [{"name": "amount", "type": "i64"}]},
          {"name": "Scale", "fields": ["u8", "u16"]}
        ]
      }
    }
  ],
  "errors": [
    {"code": 6000, "name": "Unauthorized", "msg": "only the authority may increment"}
  ]
}`

func generate(t *testing.T, opts Options) map[string]string {
	t.Helper()
	def, err := idl.Parse([]byte(genIDL))
	require.NoError(t, err)

	files, err := New(def, opts).Generate()
	require.NoError(t, err)

	out := make(map[string]string, len(files))
	for _, f := range files {
		out[f.Name] = string(f.Content)
	}
	return out
}

func TestGenerate_ProducesAllFiles(t *testing.T) {
	files := generate(t, Options{})
	for _, name := range []string{"instructions.go", "types.go", "accounts.go", "errors.go"} {
		require.Contains(t, files, name)
		assert.Contains(t, files[name], "package counter")
		assert.Contains(t, files[name], "Code generated by anchorgo. DO NOT EDIT.")
	}
}

func TestGenerate_InstructionBuilders(t *testing.T) {
	files := generate(t, Options{ProgramID: "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS"})
	src := files["instructions.go"]

	assert.Contains(t, src, `solana.MustPublicKeyFromBase58("Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS")`)
	assert.Contains(t, src, "func SetProgramID(id solana.PublicKey)")

	// Builders take an args struct only when the instruction has args.
	assert.Contains(t, src, "func NewInitializeInstruction(args InitializeArgs, accounts InitializeAccounts) (solana.Instruction, error)")
	assert.Contains(t, src, "func NewIncrementInstruction(accounts IncrementAccounts) (solana.Instruction, error)")

	// The baked-in discriminator matches the coder's sighash.
	disc := coder.InstructionDiscriminator("initialize")
	assert.Contains(t, src, fmt.Sprintf("var InitializeDiscriminator = [8]byte%s", discLiteral(disc[:])))

	// Option arguments become pointers. gofmt aligns struct fields, so
	// match loosely.
	assert.Regexp(t, `Memo\s+\*string`, src)
}

func TestGenerate_OptionalAccountsSkippedWhenZero(t *testing.T) {
	files := generate(t, Options{})
	src := files["instructions.go"]

	// Optional accounts only land in the metas when a key was provided,
	// matching the dynamic client's behavior.
	assert.Contains(t, src, "if !accounts.Referrer.IsZero() {")
	assert.Contains(t, src, "metas = append(metas, solana.NewAccountMeta(accounts.Counter, true, false))")
}

func TestGenerate_Accounts(t *testing.T) {
	files := generate(t, Options{})
	src := files["accounts.go"]

	disc := coder.AccountDiscriminator("Counter")
	assert.Contains(t, src, fmt.Sprintf("var CounterDiscriminator = [8]byte%s", discLiteral(disc[:])))
	assert.Contains(t, src, "func DecodeCounter(data []byte) (*Counter, error)")
	assert.Regexp(t, `Tags\s+\[\]string`, src)
}

func TestGenerate_Enums(t *testing.T) {
	files := generate(t, Options{})
	src := files["types.go"]

	// Unit-only enums become uint8 constants.
	assert.Contains(t, src, "type Mode uint8")
	assert.Contains(t, src, "ModeAuto Mode = iota")

	// Enums with payloads become an interface with variant structs.
	assert.Contains(t, src, "type Adjustment interface")
	assert.Contains(t, src, "type AdjustmentDelta struct")
	assert.Contains(t, src, "Elem0 uint8")
	assert.Contains(t, src, "func UnmarshalAdjustment(dec *bin.Decoder) (Adjustment, error)")
}

func TestGenerate_Errors(t *testing.T) {
	files := generate(t, Options{})
	src := files["errors.go"]

	assert.Contains(t, src, "ErrCodeUnauthorized = 6000")
	assert.Contains(t, src, "func ErrorMessage(code int) (string, bool)")
}

func TestGenerate_PackageNameOverride(t *testing.T) {
	files := generate(t, Options{PackageName: "counterclient"})
	assert.Contains(t, files["instructions.go"], "package counterclient")
}

func TestWriteFiles(t *testing.T) {
	def, err := idl.Parse([]byte(genIDL))
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "client")
	require.NoError(t, New(def, Options{}).WriteFiles(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestPackageName(t *testing.T) {
	assert.Equal(t, "mydex", packageName("my_dex"))
	assert.Equal(t, "counter", packageName("Counter"))
	assert.Equal(t, "client", packageName("_"))
}
