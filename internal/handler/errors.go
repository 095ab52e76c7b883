package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/turmas/internal/middleware"
	"github.com/hitoshi/turmas/internal/model"
)

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeTutorNotFound,
		model.ErrCodeClassNotFound,
		model.ErrCodeStudentNotFound,
		model.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case model.ErrCodeDuplicateTutorEmail,
		model.ErrCodeDuplicateStudentEmail,
		model.ErrCodeClassNotEmpty,
		model.ErrCodeTutorHasClasses:
		return http.StatusConflict
	case model.ErrCodeInvalidRequest,
		model.ErrCodeInvalidDate,
		model.ErrCodeInvalidDateRange,
		model.ErrCodeInvalidPagination,
		model.ErrCodeValidationFailed,
		model.ErrCodeEmptyPatch:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func routeNotFoundError() *model.APIError {
	return &model.APIError{
		Code:     "ROUTE_NOT_FOUND",
		Message:  "指定されたパスは存在しません。",
		Category: model.CategoryNotFound,
		Action:   "URLを確認してください。",
	}
}

func methodNotAllowedError() *model.APIError {
	return &model.APIError{
		Code:     "METHOD_NOT_ALLOWED",
		Message:  "このパスでは指定されたHTTPメソッドを使用できません。",
		Category: model.CategoryValidation,
		Action:   "HTTPメソッドを確認してください。",
	}
}
