package models

// The asset catalogue is a closed set: each kind maps a URL key to a table
// and a fixed column schema. Requests naming any other kind are rejected, and
// fields outside a kind's schema are dropped before they reach SQL.

type FieldType string

const (
	FieldText   FieldType = "text"
	FieldNumber FieldType = "number"
	FieldDate   FieldType = "date"
)

type Field struct {
	Name     string // JSON field name
	Column   string
	Type     FieldType
	Required bool
}

type AssetKind struct {
	Key    string
	Table  string
	Fields []Field
}

func (k AssetKind) FieldByName(name string) (Field, bool) {
	for _, f := range k.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

var assetKinds = []AssetKind{
	{
		Key:   "bank-accounts",
		Table: "bank_accounts",
		Fields: []Field{
			{Name: "holderName", Column: "holder_name", Type: FieldText, Required: true},
			{Name: "bankName", Column: "bank_name", Type: FieldText, Required: true},
			{Name: "accountNumber", Column: "account_number", Type: FieldText},
			{Name: "sortCode", Column: "sort_code", Type: FieldText},
			{Name: "currentBalance", Column: "current_balance", Type: FieldNumber, Required: true},
		},
	},
	{
		Key:   "term-deposits",
		Table: "term_deposits",
		Fields: []Field{
			{Name: "holderName", Column: "holder_name", Type: FieldText, Required: true},
			{Name: "institution", Column: "institution", Type: FieldText, Required: true},
			{Name: "investmentType", Column: "investment_type", Type: FieldText},
			{Name: "accountNumber", Column: "account_number", Type: FieldText},
			{Name: "amount", Column: "amount", Type: FieldNumber, Required: true},
			{Name: "maturityDate", Column: "maturity_date", Type: FieldDate},
			{Name: "currentValue", Column: "current_value", Type: FieldNumber},
		},
	},
	{
		Key:   "stocks",
		Table: "stocks",
		Fields: []Field{
			{Name: "name", Column: "name", Type: FieldText, Required: true},
			{Name: "symbol", Column: "symbol", Type: FieldText, Required: true},
			{Name: "purchaseDate", Column: "purchase_date", Type: FieldDate},
			{Name: "buyPrice", Column: "buy_price", Type: FieldNumber, Required: true},
			{Name: "quantity", Column: "quantity", Type: FieldNumber, Required: true},
			{Name: "currentValue", Column: "current_value", Type: FieldNumber},
			{Name: "broker", Column: "broker", Type: FieldText},
		},
	},
	{
		Key:   "metals",
		Table: "metals",
		Fields: []Field{
			{Name: "metalName", Column: "metal_name", Type: FieldText, Required: true},
			{Name: "quantity", Column: "quantity", Type: FieldNumber, Required: true},
			{Name: "buyingPrice", Column: "buying_price", Type: FieldNumber, Required: true},
			{Name: "currentValue", Column: "current_value", Type: FieldNumber},
		},
	},
	{
		Key:   "real-estate",
		Table: "real_estates",
		Fields: []Field{
			{Name: "identifier", Column: "identifier", Type: FieldText, Required: true},
			{Name: "propertyType", Column: "property_type", Type: FieldText},
			{Name: "address", Column: "address", Type: FieldText},
			{Name: "purchasePrice", Column: "purchase_price", Type: FieldNumber, Required: true},
			{Name: "currentValue", Column: "current_value", Type: FieldNumber},
			{Name: "mortgageAmount", Column: "mortgage_amount", Type: FieldNumber},
		},
	},
	{
		Key:   "pension",
		Table: "pensions",
		Fields: []Field{
			{Name: "holderName", Column: "holder_name", Type: FieldText, Required: true},
			{Name: "providerName", Column: "provider_name", Type: FieldText, Required: true},
			{Name: "schemeName", Column: "scheme_name", Type: FieldText},
			{Name: "accountNumber", Column: "account_number", Type: FieldText},
			{Name: "currentValue", Column: "current_value", Type: FieldNumber, Required: true},
		},
	},
	{
		Key:   "loans",
		Table: "loans",
		Fields: []Field{
			{Name: "institution", Column: "institution", Type: FieldText, Required: true},
			{Name: "loanType", Column: "loan_type", Type: FieldText, Required: true},
			{Name: "loanAmount", Column: "loan_amount", Type: FieldNumber, Required: true},
			{Name: "tenureYears", Column: "tenure_years", Type: FieldNumber},
			{Name: "startDate", Column: "start_date", Type: FieldDate},
			{Name: "monthlyPayment", Column: "monthly_payment", Type: FieldNumber},
			{Name: "outstandingBalance", Column: "outstanding_balance", Type: FieldNumber, Required: true},
		},
	},
	{
		Key:   "insurance",
		Table: "insurances",
		Fields: []Field{
			{Name: "insuredName", Column: "insured_name", Type: FieldText, Required: true},
			{Name: "policyType", Column: "policy_type", Type: FieldText, Required: true},
			{Name: "provider", Column: "provider", Type: FieldText},
			{Name: "policyNumber", Column: "policy_number", Type: FieldText},
			{Name: "sumAssured", Column: "sum_assured", Type: FieldNumber},
			{Name: "currentPayoutValue", Column: "current_payout_value", Type: FieldNumber, Required: true},
		},
	},
}

var assetKindsByKey map[string]AssetKind

func init() {
	assetKindsByKey = make(map[string]AssetKind, len(assetKinds))
	for i := range assetKinds {
		// Every kind carries a source currency alongside its own schema.
		assetKinds[i].Fields = append(assetKinds[i].Fields,
			Field{Name: "currency", Column: "currency", Type: FieldText})
		assetKindsByKey[assetKinds[i].Key] = assetKinds[i]
	}
}

func AssetKindByKey(key string) (AssetKind, bool) {
	k, ok := assetKindsByKey[key]
	return k, ok
}

func AssetKinds() []AssetKind {
	return assetKinds
}
