package i18n

import goi18n "github.com/nicksnyder/go-i18n/v2/i18n"

const (
	MsgCheckoutOK         = "checkout_ok"
	MsgCheckoutReplayed   = "checkout_replayed"
	MsgInvalidRequest     = "invalid_request"
	MsgInvalidCart        = "invalid_cart"
	MsgInvalidPayment     = "invalid_payment"
	MsgUnderpayment       = "underpayment"
	MsgInsufficientStock  = "insufficient_stock"
	MsgProductNotFound    = "product_not_found"
	MsgCheckoutInProgress = "checkout_in_progress"
	MsgStorageTimeout     = "storage_timeout"
	MsgInternalError      = "internal_error"
	MsgLookupUnavailable  = "lookup_unavailable"
	MsgUnauthorized       = "unauthorized"
	MsgForbidden          = "forbidden"
	MsgSaleNotFound       = "sale_not_found"
)

var english = []*goi18n.Message{
	{ID: MsgCheckoutOK, Other: "Sale completed successfully."},
	{ID: MsgCheckoutReplayed, Other: "Sale {{.SaleID}} was already completed for this request."},
	{ID: MsgInvalidRequest, Other: "The request payload is invalid."},
	{ID: MsgInvalidCart, Other: "The cart is invalid: {{.Detail}}."},
	{ID: MsgInvalidPayment, Other: "The payment data is invalid: {{.Detail}}."},
	{ID: MsgUnderpayment, Other: "Paid amount {{.Paid}} is below the sale total {{.Total}}."},
	{ID: MsgInsufficientStock, Other: "Insufficient stock for {{.ProductName}}. Available: {{.Available}}, requested: {{.Requested}}."},
	{ID: MsgProductNotFound, Other: "Product with ID {{.ProductID}} not found."},
	{ID: MsgCheckoutInProgress, Other: "This sale is already being processed."},
	{ID: MsgStorageTimeout, Other: "The store is busy, please try again."},
	{ID: MsgInternalError, Other: "Internal error while processing the sale."},
	{ID: MsgLookupUnavailable, Other: "Product search is unavailable."},
	{ID: MsgUnauthorized, Other: "Operator identification is required."},
	{ID: MsgForbidden, Other: "Operator is not allowed to use the PDV."},
	{ID: MsgSaleNotFound, Other: "Sale not found."},
}

var portuguese = []*goi18n.Message{
	{ID: MsgCheckoutOK, Other: "Venda realizada com sucesso!"},
	{ID: MsgCheckoutReplayed, Other: "A venda {{.SaleID}} já foi concluída para esta requisição."},
	{ID: MsgInvalidRequest, Other: "Dados da venda incompletos."},
	{ID: MsgInvalidCart, Other: "Carrinho inválido: {{.Detail}}."},
	{ID: MsgInvalidPayment, Other: "Pagamento inválido: {{.Detail}}."},
	{ID: MsgUnderpayment, Other: "Valor pago {{.Paid}} é menor que o total da venda {{.Total}}."},
	{ID: MsgInsufficientStock, Other: "Estoque insuficiente para {{.ProductName}}. Disponível: {{.Available}}, Solicitado: {{.Requested}}."},
	{ID: MsgProductNotFound, Other: "Produto com ID {{.ProductID}} não encontrado."},
	{ID: MsgCheckoutInProgress, Other: "Esta venda já está sendo processada."},
	{ID: MsgStorageTimeout, Other: "Sistema ocupado, tente novamente."},
	{ID: MsgInternalError, Other: "Erro interno ao processar a venda."},
	{ID: MsgLookupUnavailable, Other: "Erro interno na busca de produtos."},
	{ID: MsgUnauthorized, Other: "Identificação do operador obrigatória."},
	{ID: MsgForbidden, Other: "Operador sem permissão para usar o PDV."},
	{ID: MsgSaleNotFound, Other: "Venda não encontrada."},
}
