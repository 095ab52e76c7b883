package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hitoshi/turmas/internal/model"
)

// maxBodyBytes はリクエストボディの上限サイズ。
const maxBodyBytes = 1 << 20

// validate はリクエストボディの構造体タグ検証に使う共有インスタンス。
// エラーのフィールド名はJSONキー名で報告する。
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON はリクエストボディをdstにデコードし、構造体タグで検証する。
// 未定義のフィールドを含むボディは拒否する。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return model.NewInvalidRequestError(err.Error())
	}
	if dec.More() {
		return model.NewInvalidRequestError("JSONオブジェクトは1つだけ指定してください")
	}

	if err := validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return model.NewInvalidRequestError(err.Error())
		}
		fields := make([]string, 0, len(ve))
		for _, fe := range ve {
			fields = append(fields, fe.Field())
		}
		sort.Strings(fields)
		return model.NewValidationFailedError(fields)
	}
	return nil
}

// parsePage はクエリパラメータskipとlimitからページ指定を読み取る。
// 省略時はskip=0、limit=100。
func parsePage(r *http.Request) (model.Page, error) {
	q := r.URL.Query()
	skip, limit := 0, model.DefaultPageLimit

	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return model.Page{}, model.NewInvalidPaginationError(-1, limit)
		}
		skip = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return model.Page{}, model.NewInvalidPaginationError(skip, 0)
		}
		limit = n
	}
	return model.NewPage(skip, limit)
}

// writeJSON はvをJSONとして書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
