package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tealeg/xlsx"
)

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.Store.ListSales(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sales)
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "id inválido.")
		return
	}
	sale, err := h.Store.GetSale(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sale)
}

func (h *Handler) deleteSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "id inválido.")
		return
	}
	if err := h.Store.DeleteSale(r.Context(), id); err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Venta eliminada."})
}

// exportSales writes one spreadsheet row per sale line item.
func (h *Handler) exportSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.Store.ListSales(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Ventas")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "No se pudo crear la hoja de cálculo.")
		return
	}

	headerRow := sheet.AddRow()
	for _, title := range []string{"ID Venta", "Fecha", "ID Cliente", "ID Sucursal", "ID Producto", "Producto", "Cantidad", "Precio Unitario", "Subtotal", "Total Venta"} {
		headerRow.AddCell().SetValue(title)
	}

	for _, sale := range sales {
		for _, item := range sale.Items {
			row := sheet.AddRow()
			row.AddCell().SetValue(sale.ID)
			row.AddCell().SetValue(sale.CreatedAt)
			row.AddCell().SetValue(sale.ClientID)
			row.AddCell().SetValue(sale.BranchID)
			row.AddCell().SetValue(item.ProductID)
			row.AddCell().SetValue(item.ProductName)
			row.AddCell().SetValue(item.Quantity)
			row.AddCell().SetValue(item.UnitPrice.StringFixed(2))
			row.AddCell().SetValue(item.Subtotal().StringFixed(2))
			row.AddCell().SetValue(sale.Total.StringFixed(2))
		}
	}

	name := fmt.Sprintf("ventas-%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Transfer-Encoding", "binary")
	w.Header().Set("Expires", "0")

	if err := file.Write(w); err != nil {
		respondError(w, http.StatusInternalServerError, "No se pudo escribir el archivo.")
		return
	}
}
