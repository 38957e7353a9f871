package repoargs

type RepositoryName string

const (
	UserRepoName              RepositoryName = "user"
	ProjectRepoName           RepositoryName = "project"
	OrderRepoName             RepositoryName = "order"
	WalletTransactionRepoName RepositoryName = "wallet_transaction"
	WithdrawalRepoName        RepositoryName = "withdrawal"
	SettingsRepoName          RepositoryName = "settings"
	AuditLogRepoName          RepositoryName = "audit_log"
)

// Page is a 1-based pagination window.
type Page struct {
	Number uint
	Limit  uint
}

func (p Page) Offset() uint {
	if p.Number <= 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}
