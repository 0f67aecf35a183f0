package extract

// 各抽取路径使用的提示词，沿用平台知识库的结构化输出要求

const imagePrompt = `请分析这张图片的内容，提取所有有用的信息：

1. 图片中的文字内容
2. 图表和数据信息
3. 求职相关的建议和指导
4. 重要知识点和技巧
5. 可操作的建议

请以结构化的方式输出分析结果。

图片文件名：%s`

const documentPrompt = `请解析这个文档的内容，提取所有有用的信息：

1. 文档标题和结构
2. 主要内容和要点
3. 求职相关的建议和指导
4. 重要知识点和技巧
5. 可操作的建议

请以结构化的方式输出分析结果。

文档文件名：%s`

const feishuDocumentPrompt = `请解析这个飞书文档的内容，提取所有有用的信息，包括：
1. 文档标题和主要章节
2. 关键内容和要点
3. 数据表格内容
4. 重要知识点和技巧
5. 求职相关的建议和指导

请以结构化的方式输出，便于后续检索和使用。

文档链接：%s

文档原始内容：
%s`

const feishuSpreadsheetPrompt = `请解析这个飞书表格的内容，提取所有数据和分析：

1. 表格结构和列名
2. 所有行数据内容
3. 数据统计和分析
4. 关键指标和趋势
5. 求职相关的数据洞察

请以结构化的方式输出，包含表格数据和相关分析。

表格链接：%s

表格原始内容：
%s`
