package repository

import (
	"context"
	"time"

	"movies-catalog/internal/database"
	"movies-catalog/internal/models"
)

type CompanyRepository interface {
	FindOrCreateByName(ctx context.Context, name string) (*models.ProductionCompany, error)
}

type companyRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewCompanyRepository(db *database.Database) CompanyRepository {
	return &companyRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *companyRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *companyRepository) FindOrCreateByName(ctx context.Context, name string) (*models.ProductionCompany, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var company models.ProductionCompany
	err := r.db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&company, models.ProductionCompany{Name: name}).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}
