package consoleHandler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"firstpick/internal/adapters/in/http/handlers/common"
	usecase "firstpick/internal/application/usecase"
)

const (
	maxUploadMemory = 32 << 20
	maxExtraImages  = 10
)

// ProductHandler is the admin product editor. Create and edit take
// multipart/form-data with the text fields name, price, description,
// category, stockStatus and the files mainImage and extraImage0..9.
// An edit may also send extraImageCount to drop trailing extra images.
//
//	POST   /        create
//	PUT    /{id}    edit; omitted files keep the stored image
//	DELETE /{id}
type ProductHandler struct {
	uc  *usecase.ProductUsecase
	log *zap.Logger
	mux chi.Router
}

func NewProductHandler(uc *usecase.ProductUsecase, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &ProductHandler{uc: uc, log: log, mux: chi.NewRouter()}
	h.mux.MethodNotAllowed(common.MethodNotAllowed)
	h.mux.NotFound(common.NotFound)
	h.mux.Post("/", h.create)
	h.mux.Put("/{id}", h.update)
	h.mux.Delete("/{id}", h.delete)
	return h
}

func (h *ProductHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	in, imgs, closeAll, err := readProductForm(r)
	defer closeAll()
	if err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	p, err := h.uc.Create(r.Context(), in, imgs)
	if err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request) {
	in, imgs, closeAll, err := readProductForm(r)
	defer closeAll()
	if err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	p, err := h.uc.Update(r.Context(), chi.URLParam(r, "id"), in, imgs)
	if err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteUsecaseError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readProductForm opens every uploaded file; the returned func closes them.
func readProductForm(r *http.Request) (usecase.ProductInput, usecase.ProductImages, func(), error) {
	var files []multipart.File
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return usecase.ProductInput{}, usecase.ProductImages{}, closeAll,
			fmt.Errorf("%w: invalid multipart form: %v", usecase.ErrInvalidArgument, err)
	}

	in := usecase.ProductInput{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Price:       strings.TrimSpace(r.FormValue("price")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Category:    strings.TrimSpace(r.FormValue("category")),
		StockStatus: strings.TrimSpace(r.FormValue("stockStatus")),
	}

	open := func(field string) (*usecase.Image, error) {
		f, hdr, err := r.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", usecase.ErrInvalidArgument, field, err)
		}
		files = append(files, f)
		return &usecase.Image{ContentType: hdr.Header.Get("Content-Type"), Body: f}, nil
	}

	var imgs usecase.ProductImages
	var err error
	if imgs.Main, err = open("mainImage"); err != nil {
		return in, imgs, closeAll, err
	}

	// positional slots; trailing empty slots are dropped
	extras := make([]*usecase.Image, maxExtraImages)
	last := -1
	for i := range extras {
		if extras[i], err = open(fmt.Sprintf("extraImage%d", i)); err != nil {
			return in, imgs, closeAll, err
		}
		if extras[i] != nil {
			last = i
		}
	}
	imgs.Extras = extras[:last+1]

	if v := strings.TrimSpace(r.FormValue("extraImageCount")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > maxExtraImages {
			return in, imgs, closeAll, fmt.Errorf("%w: extraImageCount must be 0..%d", usecase.ErrInvalidArgument, maxExtraImages)
		}
		imgs.ExtraCount = &n
	}

	return in, imgs, closeAll, nil
}
