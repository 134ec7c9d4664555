package i18n

import "github.com/satishbabariya/restdb/internal/core/fault"

type text struct {
	ru string
	en string
}

// messages holds the printf formats for every kind; arguments follow the
// order in which the fault was created.
var messages = map[fault.Kind]text{
	fault.Internal: {
		"Внутренняя ошибка сервера",
		"Internal server error",
	},
	fault.QueryFailed: {
		"Ошибка выполнения запроса %v",
		"Query %v failed",
	},
	fault.SelectFailed: {
		"Ошибка выборки данных из таблицы %v",
		"Failed to select rows from %v",
	},
	fault.AmbiguousInsertValue: {
		"Параметр %v имеет несколько значений %v, добавление записи невозможно",
		"Parameter %v has several values %v, cannot insert a record",
	},
	fault.InsertFailed: {
		"Ошибка добавления записей в таблицу %v",
		"Failed to insert records into %v",
	},
	fault.MissingBody: {
		"Тело запроса не содержит записей",
		"Request body contains no records",
	},
	fault.GeneratorNotFound: {
		"Генератор запросов %v не найден",
		"Query generator %v not found",
	},
	fault.DeleteFailed: {
		"Ошибка удаления записи из таблицы %v",
		"Failed to delete the record from %v",
	},
	fault.ExecuteFailed: {
		"Ошибка выполнения операции %v",
		"Operation %v failed",
	},
	fault.PrimaryKeyLookupFailed: {
		"Не удалось получить первичный ключ таблицы %v",
		"Failed to read the primary key of %v",
	},
	fault.TooManyKeyValues: {
		"Ключевое поле %v имеет более двух значений %v",
		"Key field %v has more than two values %v",
	},
	fault.AmbiguousNonKeyValue: {
		"Поле %v имеет несколько значений %v",
		"Field %v has several values %v",
	},
	fault.TooManyUpdateRecords: {
		"Для изменения допускается только одна запись",
		"Only one record may be updated at a time",
	},
	fault.KeyValueConflictsWithBody: {
		"Новое значение ключевого поля %v %v передано вместе с телом запроса",
		"New value of key field %v %v conflicts with the request body",
	},
	fault.NonKeyFieldConflictsWithBody: {
		"Значение поля %v %v передано вместе с телом запроса",
		"Value of field %v %v conflicts with the request body",
	},
	fault.UpdateFailed: {
		"Ошибка изменения записи в таблице %v",
		"Failed to update the record in %v",
	},
	fault.MissingKeyValues: {
		"Не заданы значения первичного ключа",
		"Primary key values are missing",
	},
	fault.NonKeyFieldInDelete: {
		"Поле %v не входит в первичный ключ таблицы %v",
		"Field %v is not part of the primary key of %v",
	},
	fault.IncompleteKey: {
		"Задано %v из %v полей первичного ключа таблицы %v",
		"%v of %v primary key fields of %v are set",
	},
	fault.KeyCountMismatch: {
		"Передано параметров: %v, полей первичного ключа: %v, таблица %v",
		"Got %v parameters for %v primary key fields of %v",
	},
	fault.AmbiguousKeyValue: {
		"Ключевое поле %v имеет несколько значений",
		"Key field %v has several values",
	},
	fault.InvalidTableName: {
		"Недопустимое имя таблицы %v",
		"Invalid table name %v",
	},
	fault.RecordNotFound: {
		"Запись не найдена",
		"Record not found",
	},
	fault.AllRowsDisallowed: {
		"Выборка всех записей таблицы запрещена",
		"Selecting all rows of a table is not allowed",
	},
	fault.MalformedObjectName: {
		"Имя %v должно иметь вид генератор.операция",
		"Name %v must have the form generator.operation",
	},
	fault.MetadataDisabled: {
		"Получение метаданных отключено",
		"Metadata access is disabled",
	},
	fault.MetadataFailed: {
		"Ошибка получения метаданных %v",
		"Metadata operation %v failed",
	},
	fault.UnsupportedMetadataOperation: {
		"Операция метаданных %v не поддерживается",
		"Metadata operation %v is not supported",
	},
	fault.DuplicateKeyValue: {
		"Повторные значения %v ключевого поля %v",
		"Duplicate values %v of key field %v",
	},
	fault.OperationNotFound: {
		"Операция %v не найдена",
		"Operation %v not found",
	},
	fault.NothingToUpdate: {
		"Нет полей для изменения в таблице %v",
		"No fields to update in %v",
	},
	fault.NoPrimaryKey: {
		"Таблица %v не имеет первичного ключа",
		"Table %v has no primary key",
	},
	fault.MalformedBody: {
		"Тело запроса не является массивом записей",
		"Request body is not an array of records",
	},
	fault.MalformedQuery: {
		"Некорректная строка запроса: %v",
		"Malformed query string: %v",
	},
	fault.InvalidIdentifier: {
		"Недопустимый идентификатор %v",
		"Invalid identifier %v",
	},
	fault.EmptyRecord: {
		"Запись не содержит полей",
		"Record has no fields",
	},
	fault.RecordShapeMismatch: {
		"Запись %v не совпадает по полям с первой записью: %v",
		"Record %v does not match the fields of the first record: %v",
	},
	fault.MissingTemplateValue: {
		"Не задано значение параметра %v",
		"No value for parameter %v",
	},
}
