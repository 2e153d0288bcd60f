package db

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"loan-broker/pkg/types"
)

// Суффиксы фильтров диапазона: filter[score__gte]=100&filter[score__lte]=200.
const (
	suffixGte = "__gte"
	suffixLte = "__lte"
)

// ApplyListParams добавляет к запросу фильтры, сортировку и пагинацию.
// allowedMap сопоставляет имя поля из запроса с колонкой; остальные поля игнорируются.
func ApplyListParams(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string) sq.SelectBuilder {
	builder = ApplyFilters(builder, filter, allowedMap)

	for jsonField, dir := range filter.Sort {
		dbCol, ok := allowedMap[jsonField]
		if !ok {
			continue
		}
		sqlDir := "ASC"
		if strings.ToLower(dir) == "desc" {
			sqlDir = "DESC"
		}
		builder = builder.OrderBy(fmt.Sprintf("%s %s", dbCol, sqlDir))
	}

	if filter.WithPagination {
		if filter.Limit > 0 {
			builder = builder.Limit(uint64(filter.Limit))
		}
		if filter.Offset > 0 {
			builder = builder.Offset(uint64(filter.Offset))
		}
	}

	return builder
}

// ApplyFilters - только условия WHERE; используется и для COUNT.
func ApplyFilters(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string) sq.SelectBuilder {
	for jsonField, val := range filter.Filter {
		field, cmp := jsonField, ""
		switch {
		case strings.HasSuffix(jsonField, suffixGte):
			field, cmp = strings.TrimSuffix(jsonField, suffixGte), suffixGte
		case strings.HasSuffix(jsonField, suffixLte):
			field, cmp = strings.TrimSuffix(jsonField, suffixLte), suffixLte
		}

		dbCol, ok := allowedMap[field]
		if !ok {
			continue
		}

		switch cmp {
		case suffixGte:
			builder = builder.Where(sq.GtOrEq{dbCol: val})
		case suffixLte:
			builder = builder.Where(sq.LtOrEq{dbCol: val})
		default:
			if s, ok := val.(string); ok && strings.Contains(s, ",") {
				builder = builder.Where(sq.Eq{dbCol: strings.Split(s, ",")})
			} else {
				builder = builder.Where(sq.Eq{dbCol: val})
			}
		}
	}
	return builder
}

// ApplySearch - ILIKE по нескольким колонкам через OR.
func ApplySearch(builder sq.SelectBuilder, search string, columns ...string) sq.SelectBuilder {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return builder
	}
	pattern := "%" + search + "%"
	or := make(sq.Or, 0, len(columns))
	for _, col := range columns {
		or = append(or, sq.ILike{col: pattern})
	}
	return builder.Where(or)
}
