package storage

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ryabkov82/backoffice-server/internal/record"
)

type (
	CustomerRepository = Repository[record.Customer, *record.Customer]
	SupplierRepository = Repository[record.Supplier, *record.Supplier]
)

// NewCustomerRepository returns the repository for the customers collection
func NewCustomerRepository(db *mongo.Database, timeout time.Duration) *CustomerRepository {
	return NewRepository[record.Customer, *record.Customer](db, CustomersCollection, timeout)
}

// NewSupplierRepository returns the repository for the suppliers collection
func NewSupplierRepository(db *mongo.Database, timeout time.Duration) *SupplierRepository {
	return NewRepository[record.Supplier, *record.Supplier](db, SuppliersCollection, timeout)
}
