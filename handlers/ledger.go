package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nirmantrack/sitebooks_backend/models"
	"github.com/nirmantrack/sitebooks_backend/workflow"
)

func CreateLedgerAccount(c *gin.Context) {
	var input models.NewLedgerAccount
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	account, err := workflow.CreateLedgerAccount(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

func GetLedgerAccounts(c *gin.Context) {
	var name *string
	if v := c.Query("name"); v != "" {
		name = &v
	}
	accounts, err := models.GetLedgerAccounts(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func GetLedgerAccount(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	account, err := models.GetLedgerAccount(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func UpdateLedgerAccount(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewLedgerAccount
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	account, err := workflow.UpdateLedgerAccount(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func DeleteLedgerAccount(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	account, err := workflow.DeleteLedgerAccount(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func CreateLedgerEntry(c *gin.Context) {
	var input models.NewLedgerEntry
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	entry, err := workflow.CreateManualLedgerEntry(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func GetLedgerEntries(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	entries, err := models.GetLedgerEntries(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func DeleteLedgerEntry(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	entry, err := workflow.DeleteLedgerEntry(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func GetLedgerOverview(c *gin.Context) {
	overview, err := models.GetLedgerOverview(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}
