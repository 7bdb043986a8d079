package testdata

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/jask/linkwise/internal/bankinfo"
)

var banks = []struct {
	name    string
	routing string
}{
	{"Chase", "021000021"},
	{"Bank of America", "026009593"},
	{"Wells Fargo", "121000248"},
	{"Citibank", "021000089"},
}

// GeneratePlaidData builds a sample aggregation result with n accounts. The
// same rng seed yields the same result.
func GeneratePlaidData(n int, rng *rand.Rand) bankinfo.PlaidData {
	bank := banks[rng.Intn(len(banks))]
	data := bankinfo.PlaidData{
		BankName:         bank.name,
		PlaidAccessToken: "access-sandbox-" + seededUUID(rng).String(),
		BankAccounts:     make([]bankinfo.PlaidBankAccount, 0, n),
	}
	for i := 0; i < n; i++ {
		number := fmt.Sprintf("%010d", rng.Int63n(10_000_000_000))
		data.BankAccounts = append(data.BankAccounts, bankinfo.PlaidBankAccount{
			PlaidAccountID: seededUUID(rng).String(),
			RoutingNumber:  bank.routing,
			AccountNumber:  number,
			Mask:           number[len(number)-4:],
			IsSavings:      rng.Intn(3) == 0,
			AddressName:    fmt.Sprintf("%s %s", bank.name, bankinfo.AccountType(i%2 == 1)),
		})
	}
	return data
}

func seededUUID(rng *rand.Rand) uuid.UUID {
	var b [16]byte
	_, _ = rng.Read(b[:])
	u, _ := uuid.FromBytes(b[:])
	u[6] = (u[6] & 0x0f) | 0x40 // version 4
	u[8] = (u[8] & 0x3f) | 0x80 // variant 10
	return u
}
