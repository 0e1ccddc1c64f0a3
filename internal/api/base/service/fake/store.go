// Package fake cung cấp một implementation in-memory của basesvc.BaseServiceMongo
// dùng cho test. Store hỗ trợ tập filter/operator mà các domain service dùng
// (equality, $ne, $lt) và cho phép bơm lỗi theo từng phương thức.
package fake

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basemodels "academy/internal/api/base/models"
	basesvc "academy/internal/api/base/service"
	"academy/internal/common"
)

// Store là kho dữ liệu in-memory, thread-safe, giữ document theo thứ tự insert.
type Store[T any] struct {
	mu   sync.Mutex
	docs []T

	// Errs bơm lỗi theo tên phương thức ("InsertOne", "UpdateById", ...).
	// Phương thức có entry sẽ luôn trả lỗi đó.
	Errs map[string]error
}

// NewStore tạo một Store rỗng
func NewStore[T any]() *Store[T] {
	return &Store[T]{Errs: map[string]error{}}
}

// All trả về snapshot toàn bộ documents (phục vụ assert trong test)
func (s *Store[T]) All() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.docs))
	copy(out, s.docs)
	return out
}

// Len trả về số documents đang lưu
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

func (s *Store[T]) failure(method string) error {
	return s.Errs[method]
}

// ==================== REFLECTION HELPERS ====================

// fieldByBSON tìm field của struct theo tên bson tag (phần trước dấu phẩy)
func fieldByBSON(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("bson")
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		if tag == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func filterToMap(filter interface{}) map[string]interface{} {
	switch f := filter.(type) {
	case nil:
		return map[string]interface{}{}
	case bson.M:
		return f
	case map[string]interface{}:
		return f
	}
	return map[string]interface{}{}
}

// matches kiểm tra doc khớp filter. Hỗ trợ equality và các operator $ne, $lt,
// $gt, $in trên field top-level (tra theo bson tag).
func matches[T any](doc T, filter interface{}) bool {
	fm := filterToMap(filter)
	if len(fm) == 0 {
		return true
	}

	v := reflect.ValueOf(doc)
	for key, expected := range fm {
		field, ok := fieldByBSON(v, key)
		if !ok {
			return false
		}
		actual := field.Interface()

		// Operator map: {"$ne": x}, {"$lt": n}, ...
		if opMap := filterToMap(expected); len(opMap) > 0 {
			isOpMap := false
			for op := range opMap {
				if strings.HasPrefix(op, "$") {
					isOpMap = true
					break
				}
			}
			if isOpMap {
				if !matchOps(actual, opMap) {
					return false
				}
				continue
			}
		}

		if !reflect.DeepEqual(actual, expected) {
			return false
		}
	}
	return true
}

func matchOps(actual interface{}, ops map[string]interface{}) bool {
	for op, operand := range ops {
		switch op {
		case "$ne":
			if reflect.DeepEqual(actual, operand) {
				return false
			}
		case "$lt":
			a, ok1 := toFloat(actual)
			b, ok2 := toFloat(operand)
			if !ok1 || !ok2 || !(a < b) {
				return false
			}
		case "$gt":
			a, ok1 := toFloat(actual)
			b, ok2 := toFloat(operand)
			if !ok1 || !ok2 || !(a > b) {
				return false
			}
		case "$in":
			list := reflect.ValueOf(operand)
			if list.Kind() != reflect.Slice {
				return false
			}
			found := false
			for i := 0; i < list.Len(); i++ {
				if reflect.DeepEqual(actual, list.Index(i).Interface()) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// ensureID gán ObjectID mới cho field _id nếu đang zero
func ensureID[T any](doc *T) {
	v := reflect.ValueOf(doc).Elem()
	field, ok := fieldByBSON(v, "_id")
	if !ok {
		return
	}
	id, ok := field.Interface().(primitive.ObjectID)
	if !ok || !id.IsZero() {
		return
	}
	field.Set(reflect.ValueOf(primitive.NewObjectID()))
}

func docID[T any](doc T) primitive.ObjectID {
	v := reflect.ValueOf(doc)
	field, ok := fieldByBSON(v, "_id")
	if !ok {
		return primitive.NilObjectID
	}
	id, _ := field.Interface().(primitive.ObjectID)
	return id
}

// applyUpdate áp *UpdateData lên doc: Set gán giá trị, Inc cộng dồn số,
// AddToSet/Push append vào slice (AddToSet bỏ qua phần tử đã có).
func applyUpdate[T any](doc *T, data interface{}) error {
	update, err := basesvc.ToUpdateData(data)
	if err != nil {
		return err
	}

	v := reflect.ValueOf(doc).Elem()

	for key, value := range update.Set {
		field, ok := fieldByBSON(v, key)
		if !ok || !field.CanSet() {
			continue
		}
		rv := reflect.ValueOf(value)
		if rv.IsValid() && rv.Type().AssignableTo(field.Type()) {
			field.Set(rv)
		} else if rv.IsValid() && rv.Type().ConvertibleTo(field.Type()) {
			field.Set(rv.Convert(field.Type()))
		}
	}

	for key, value := range update.Inc {
		field, ok := fieldByBSON(v, key)
		if !ok || !field.CanSet() {
			continue
		}
		delta, ok := toFloat(value)
		if !ok {
			continue
		}
		switch field.Kind() {
		case reflect.Int, reflect.Int32, reflect.Int64:
			field.SetInt(field.Int() + int64(delta))
		case reflect.Float32, reflect.Float64:
			field.SetFloat(field.Float() + delta)
		}
	}

	appendTo := func(key string, value interface{}, unique bool) {
		field, ok := fieldByBSON(v, key)
		if !ok || !field.CanSet() || field.Kind() != reflect.Slice {
			return
		}
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || !rv.Type().AssignableTo(field.Type().Elem()) {
			if rv.IsValid() && rv.Type().ConvertibleTo(field.Type().Elem()) {
				rv = rv.Convert(field.Type().Elem())
			} else {
				return
			}
		}
		if unique {
			for i := 0; i < field.Len(); i++ {
				if reflect.DeepEqual(field.Index(i).Interface(), rv.Interface()) {
					return
				}
			}
		}
		field.Set(reflect.Append(field, rv))
	}
	for key, value := range update.AddToSet {
		appendTo(key, value, true)
	}
	for key, value := range update.Push {
		appendTo(key, value, false)
	}

	return nil
}

// ==================== BaseServiceMongo IMPLEMENTATION ====================

func (s *Store[T]) InsertOne(ctx context.Context, data T) (T, error) {
	var zero T
	if err := s.failure("InsertOne"); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ensureID(&data)
	s.docs = append(s.docs, data)
	return data, nil
}

func (s *Store[T]) InsertMany(ctx context.Context, data []T) ([]T, error) {
	if err := s.failure("InsertMany"); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(data))
	for _, doc := range data {
		inserted, err := s.InsertOne(ctx, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, inserted)
	}
	return out, nil
}

func (s *Store[T]) FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (T, error) {
	var zero T
	if err := s.failure("FindOne"); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.docs {
		if matches(doc, filter) {
			return doc, nil
		}
	}
	return zero, common.ErrNotFound
}

func (s *Store[T]) Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]T, error) {
	if err := s.failure("Find"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []T
	for _, doc := range s.docs {
		if matches(doc, filter) {
			out = append(out, doc)
		}
	}
	if opts != nil && opts.Limit != nil && int64(len(out)) > *opts.Limit {
		out = out[:*opts.Limit]
	}
	return out, nil
}

func (s *Store[T]) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (T, error) {
	var zero T
	if err := s.failure("UpdateOne"); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.docs {
		if matches(s.docs[i], filter) {
			if err := applyUpdate(&s.docs[i], update); err != nil {
				return zero, err
			}
			return s.docs[i], nil
		}
	}
	return zero, common.ErrNotFound
}

func (s *Store[T]) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (int64, error) {
	if err := s.failure("UpdateMany"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for i := range s.docs {
		if matches(s.docs[i], filter) {
			if err := applyUpdate(&s.docs[i], update); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

func (s *Store[T]) DeleteOne(ctx context.Context, filter interface{}) error {
	if err := s.failure("DeleteOne"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.docs {
		if matches(s.docs[i], filter) {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (s *Store[T]) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	if err := s.failure("DeleteMany"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []T
	var count int64
	for _, doc := range s.docs {
		if matches(doc, filter) {
			count++
			continue
		}
		kept = append(kept, doc)
	}
	s.docs = kept
	return count, nil
}

func (s *Store[T]) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts *options.FindOneAndUpdateOptions) (T, error) {
	var zero T
	if err := s.failure("FindOneAndUpdate"); err != nil {
		return zero, err
	}
	return s.UpdateOne(ctx, filter, update, nil)
}

func (s *Store[T]) FindOneAndDelete(ctx context.Context, filter interface{}, opts *options.FindOneAndDeleteOptions) (T, error) {
	var zero T
	if err := s.failure("FindOneAndDelete"); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.docs {
		if matches(s.docs[i], filter) {
			doc := s.docs[i]
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			return doc, nil
		}
	}
	return zero, common.ErrNotFound
}

func (s *Store[T]) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	if err := s.failure("CountDocuments"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, doc := range s.docs {
		if matches(doc, filter) {
			count++
		}
	}
	return count, nil
}

func (s *Store[T]) Distinct(ctx context.Context, fieldName string, filter interface{}) ([]interface{}, error) {
	if err := s.failure("Distinct"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[interface{}]bool{}
	var out []interface{}
	for _, doc := range s.docs {
		if !matches(doc, filter) {
			continue
		}
		field, ok := fieldByBSON(reflect.ValueOf(doc), fieldName)
		if !ok {
			continue
		}
		value := field.Interface()
		if !seen[value] {
			seen[value] = true
			out = append(out, value)
		}
	}
	return out, nil
}

func (s *Store[T]) FindOneById(ctx context.Context, id primitive.ObjectID) (T, error) {
	var zero T
	if err := s.failure("FindOneById"); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.docs {
		if docID(doc) == id {
			return doc, nil
		}
	}
	return zero, common.ErrNotFound
}

func (s *Store[T]) FindManyByIds(ctx context.Context, ids []primitive.ObjectID) ([]T, error) {
	if err := s.failure("FindManyByIds"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	want := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []T
	for _, doc := range s.docs {
		if want[docID(doc)] {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *Store[T]) FindWithPagination(ctx context.Context, filter interface{}, page, limit int64, opts *options.FindOptions) (*basemodels.PaginateResult[T], error) {
	if err := s.failure("FindWithPagination"); err != nil {
		return nil, err
	}
	all, err := s.Find(ctx, filter, nil)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	start := (page - 1) * limit
	if start > int64(len(all)) {
		start = int64(len(all))
	}
	end := start + limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	items := all[start:end]
	total := int64(len(all))
	totalPage := (total + limit - 1) / limit
	return &basemodels.PaginateResult[T]{
		Items:     items,
		Page:      page,
		Limit:     limit,
		ItemCount: int64(len(items)),
		Total:     total,
		TotalPage: totalPage,
	}, nil
}

func (s *Store[T]) UpdateById(ctx context.Context, id primitive.ObjectID, data interface{}) (T, error) {
	var zero T
	if err := s.failure("UpdateById"); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.docs {
		if docID(s.docs[i]) == id {
			if err := applyUpdate(&s.docs[i], data); err != nil {
				return zero, err
			}
			return s.docs[i], nil
		}
	}
	return zero, common.ErrNotFound
}

func (s *Store[T]) DeleteById(ctx context.Context, id primitive.ObjectID) error {
	if err := s.failure("DeleteById"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.docs {
		if docID(s.docs[i]) == id {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (s *Store[T]) Upsert(ctx context.Context, filter interface{}, data interface{}) (T, error) {
	var zero T
	if err := s.failure("Upsert"); err != nil {
		return zero, err
	}
	s.mu.Lock()
	found := -1
	for i := range s.docs {
		if matches(s.docs[i], filter) {
			found = i
			break
		}
	}
	if found >= 0 {
		if err := applyUpdate(&s.docs[found], data); err != nil {
			s.mu.Unlock()
			return zero, err
		}
		doc := s.docs[found]
		s.mu.Unlock()
		return doc, nil
	}
	s.mu.Unlock()

	// Tạo mới: data là model thì insert thẳng, là UpdateData thì áp lên zero value
	if doc, ok := data.(T); ok {
		return s.InsertOne(ctx, doc)
	}
	var doc T
	if err := applyUpdate(&doc, data); err != nil {
		return zero, err
	}
	return s.InsertOne(ctx, doc)
}

func (s *Store[T]) UpsertMany(ctx context.Context, filter interface{}, data []T) ([]T, error) {
	if err := s.failure("UpsertMany"); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(data))
	for _, doc := range data {
		upserted, err := s.Upsert(ctx, filter, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, upserted)
	}
	return out, nil
}

func (s *Store[T]) DocumentExists(ctx context.Context, filter interface{}) (bool, error) {
	if err := s.failure("DocumentExists"); err != nil {
		return false, err
	}
	count, err := s.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// đảm bảo Store thỏa interface
var _ basesvc.BaseServiceMongo[struct{}] = (*Store[struct{}])(nil)
