package domain

// UserLicenseSummary is one report row: a user's license counts and the
// joined per-license summary string. Error is set when the user could not
// be processed; such rows carry zero counts.
type UserLicenseSummary struct {
	UPN         string
	DisplayName string
	Total       int
	Direct      int
	Group       int
	Summary     string
	Error       string
}

// GroupUsageSummary reports how many distinct users inherit licenses
// through one group.
type GroupUsageSummary struct {
	GroupName  string
	UserCount  int
	MemberUPNs []string
}

// ComparisonBucket places a user relative to a SKU pair.
type ComparisonBucket string

const (
	BucketOnlyA   ComparisonBucket = "OnlyA"
	BucketOnlyB   ComparisonBucket = "OnlyB"
	BucketBoth    ComparisonBucket = "Both"
	BucketNeither ComparisonBucket = "Neither"
)

// SKUComparison partitions a user population over two SKUs. Failed users
// count toward Total but fall in no bucket, so the four bucket counts sum
// to Total - Failed.
type SKUComparison struct {
	SKUA    string
	SKUB    string
	Total   int
	Failed  int
	OnlyA   int
	OnlyB   int
	Both    int
	Neither int
}
