// Package docstore 提供按集合划分的通用 CRUD：谓词查询、计数、按 id 读取、插入、部分更新、删除。
package docstore

import (
	"context"
	"errors"

	"TutorHub/pkg/filter"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// FindOptions 排序与分页
type FindOptions struct {
	Order  string
	Offset int
	Limit  int
}

// Page 把页码换算成 offset/limit，page 从 1 开始
func Page(page, pageSize int, order string) FindOptions {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return FindOptions{Order: order, Offset: (page - 1) * pageSize, Limit: pageSize}
}

type Collection[T any] struct {
	db *gorm.DB
}

func New[T any](db *gorm.DB) *Collection[T] {
	return &Collection[T]{db: db}
}

func (c *Collection[T]) scoped(ctx context.Context, where filter.Expr, opts FindOptions) *gorm.DB {
	q := filter.Apply(c.db.WithContext(ctx).Model(new(T)), where)
	if opts.Order != "" {
		q = q.Order(opts.Order)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	return q
}

func (c *Collection[T]) Find(ctx context.Context, where filter.Expr, opts FindOptions) ([]T, error) {
	var out []T
	if err := c.scoped(ctx, where, opts).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Collection[T]) Count(ctx context.Context, where filter.Expr) (int64, error) {
	var n int64
	err := filter.Apply(c.db.WithContext(ctx).Model(new(T)), where).Count(&n).Error
	return n, err
}

// FindPage 并发执行列表与计数
func (c *Collection[T]) FindPage(ctx context.Context, where filter.Expr, opts FindOptions) ([]T, int64, error) {
	var (
		list  []T
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = c.Find(gctx, where, opts)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = c.Count(gctx, where)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Get 记录不存在时返回 nil, nil
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, nil
	}
	var rec T
	err := c.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if err == nil {
		return &rec, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

// FindOne 取第一条匹配记录，不存在时返回 nil, nil
func (c *Collection[T]) FindOne(ctx context.Context, where filter.Expr) (*T, error) {
	var rec T
	err := filter.Apply(c.db.WithContext(ctx).Model(new(T)), where).Take(&rec).Error
	if err == nil {
		return &rec, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

func (c *Collection[T]) Insert(ctx context.Context, rec *T) error {
	return c.db.WithContext(ctx).Create(rec).Error
}

// Update 按 id 更新部分字段
func (c *Collection[T]) Update(ctx context.Context, id string, fields map[string]any) error {
	if id == "" || len(fields) == 0 {
		return nil
	}
	return c.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields).Error
}

func (c *Collection[T]) Remove(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return c.db.WithContext(ctx).Where("id = ?", id).Delete(new(T)).Error
}
