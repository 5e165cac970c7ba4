package leave

import "rrhh/internal/platform/querier"

type Store struct {
	DB querier.TxQuerier
}

func NewStore(db querier.TxQuerier) *Store {
	return &Store{DB: db}
}
